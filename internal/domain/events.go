package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

// Aggregate kinds
const (
	LedgerKind    = "Ledger"
	DashboardKind = "Dashboard"
)

// LedgerStreamFormat names a ledger stream from its id.
const LedgerStreamFormat = "ledger-%s"

// LedgerEvent is one of the four events of a ledger stream.
type LedgerEvent interface {
	eventsourcing.Event
	isLedgerEvent()
}

// LedgerOpened starts a ledger.
type LedgerOpened struct {
	eventsourcing.Metadata
	LedgerID   string `json:"ledgerId"`
	LedgerName string `json:"ledgerName"`
}

// ReceiptJournalled credits a ledger.
type ReceiptJournalled struct {
	eventsourcing.Metadata
	LedgerID    string          `json:"ledgerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// PaymentJournalled debits a ledger.
type PaymentJournalled struct {
	eventsourcing.Metadata
	LedgerID    string          `json:"ledgerId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// LedgerClosed ends a ledger.
type LedgerClosed struct {
	eventsourcing.Metadata
	LedgerID string `json:"ledgerId"`
}

func (e *LedgerOpened) AggregateID() string      { return e.LedgerID }
func (e *ReceiptJournalled) AggregateID() string { return e.LedgerID }
func (e *PaymentJournalled) AggregateID() string { return e.LedgerID }
func (e *LedgerClosed) AggregateID() string      { return e.LedgerID }

func (*LedgerOpened) isLedgerEvent()      {}
func (*ReceiptJournalled) isLedgerEvent() {}
func (*PaymentJournalled) isLedgerEvent() {}
func (*LedgerClosed) isLedgerEvent()      {}

// RegisterEvents adds the ledger events to r under their type names.
func RegisterEvents(r *eventsourcing.Registry) error {
	factories := []eventsourcing.Factory{
		func() eventsourcing.Event { return &LedgerOpened{} },
		func() eventsourcing.Event { return &ReceiptJournalled{} },
		func() eventsourcing.Event { return &PaymentJournalled{} },
		func() eventsourcing.Event { return &LedgerClosed{} },
	}
	for _, f := range factories {
		if !r.Register(f) {
			return fmt.Errorf("register event %T", f())
		}
	}
	return nil
}

// NewEventRegistry returns a sealed registry holding the ledger events.
func NewEventRegistry() (*eventsourcing.Registry, error) {
	r := eventsourcing.NewRegistry()
	if err := RegisterEvents(r); err != nil {
		return nil, err
	}
	r.Seal()
	return r, nil
}
