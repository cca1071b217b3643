package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

// LedgerStatus is the lifecycle state of a ledger.
type LedgerStatus string

const (
	LedgerStatusUnopened LedgerStatus = "unopened"
	LedgerStatusOpen     LedgerStatus = "open"
	LedgerStatusClosed   LedgerStatus = "closed"
)

// Transition messages
const (
	MsgAlreadyOpened       = "Cannot open a ledger that is already opened"
	MsgReceiptToClosed     = "Cannot receipt to a closed ledger"
	MsgPaymentFromClosed   = "Cannot pay from a closed ledger"
	MsgInsufficientBalance = "Ledger has insufficient balance - $%s"
	MsgCloseNotOpen        = "Cannot close a ledger that is not open"
	MsgCloseWithBalance    = "Cannot close a ledger that has balance"
)

// checkTransition applies the ledger state machine rules shared by the write
// model and the ledger view. It returns nil when event may be applied.
func checkTransition(agg eventsourcing.Aggregate, status LedgerStatus, balance decimal.Decimal, event eventsourcing.Event) error {
	switch e := event.(type) {
	case *LedgerOpened:
		if status != LedgerStatusUnopened {
			return eventsourcing.NewInvalidStateTransition(agg, event, MsgAlreadyOpened)
		}
	case *ReceiptJournalled:
		if status != LedgerStatusOpen {
			return eventsourcing.NewInvalidStateTransition(agg, event, MsgReceiptToClosed)
		}
	case *PaymentJournalled:
		if status != LedgerStatusOpen {
			return eventsourcing.NewInvalidStateTransition(agg, event, MsgPaymentFromClosed)
		}
		if balance.LessThan(e.Amount) {
			return eventsourcing.NewInvalidStateTransition(agg, event,
				fmt.Sprintf(MsgInsufficientBalance, balance.StringFixed(2))).WithField("amount")
		}
	case *LedgerClosed:
		if status != LedgerStatusOpen {
			return eventsourcing.NewInvalidStateTransition(agg, event, MsgCloseNotOpen)
		}
		if !balance.IsZero() {
			return eventsourcing.NewInvalidStateTransition(agg, event, MsgCloseWithBalance)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEvent, event)
	}
	return nil
}

// Ledger is the write model used to validate commands.
type Ledger struct {
	ID           string
	Status       LedgerStatus
	Balance      decimal.Decimal
	Version      uint64
	ModifiedDate time.Time
}

// AggregateKind implements eventsourcing.Aggregate.
func (l *Ledger) AggregateKind() string { return LedgerKind }

// CurrentVersion implements eventsourcing.Aggregate.
func (l *Ledger) CurrentVersion() uint64 { return l.Version }

// IsOpen reports whether the ledger accepts entries.
func (l *Ledger) IsOpen() bool { return l.Status == LedgerStatusOpen }

// Apply implements eventsourcing.Aggregate.
func (l *Ledger) Apply(event eventsourcing.Event) error {
	status := l.Status
	if status == "" {
		status = LedgerStatusUnopened
	}
	if err := checkTransition(l, status, l.Balance, event); err != nil {
		return err
	}

	switch e := event.(type) {
	case *LedgerOpened:
		l.ID = e.LedgerID
		l.Status = LedgerStatusOpen
	case *ReceiptJournalled:
		l.Balance = l.Balance.Add(e.Amount)
	case *PaymentJournalled:
		l.Balance = l.Balance.Sub(e.Amount)
	case *LedgerClosed:
		l.Status = LedgerStatusClosed
	}

	l.Version++
	l.ModifiedDate = event.Meta().EventDateTime
	return nil
}
