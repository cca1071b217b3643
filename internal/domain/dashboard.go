package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

// Dashboard aggregates every ledger event into counters and totals.
// LastPosition is the global log position of the last applied event.
type Dashboard struct {
	LedgerCount       int64
	LedgerOpenCount   int64
	LedgerClosedCount int64
	TransactionCount  int64
	ReceiptCount      int64
	PaymentCount      int64
	NetAmount         decimal.Decimal
	ReceiptAmount     decimal.Decimal
	PaymentAmount     decimal.Decimal
	Version           uint64
	LastPosition      uint64
	ModifiedDate      time.Time
}

// AggregateKind implements eventsourcing.Aggregate.
func (d *Dashboard) AggregateKind() string { return DashboardKind }

// CurrentVersion implements eventsourcing.Aggregate.
func (d *Dashboard) CurrentVersion() uint64 { return d.Version }

// Apply implements eventsourcing.Aggregate. Closing a ledger moves it out of
// both LedgerCount and LedgerOpenCount.
func (d *Dashboard) Apply(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *LedgerOpened:
		d.LedgerCount++
		d.LedgerOpenCount++
	case *ReceiptJournalled:
		d.TransactionCount++
		d.ReceiptCount++
		d.NetAmount = d.NetAmount.Add(e.Amount)
		d.ReceiptAmount = d.ReceiptAmount.Add(e.Amount)
	case *PaymentJournalled:
		d.TransactionCount++
		d.PaymentCount++
		d.NetAmount = d.NetAmount.Sub(e.Amount)
		d.PaymentAmount = d.PaymentAmount.Add(e.Amount)
	case *LedgerClosed:
		d.LedgerCount--
		d.LedgerOpenCount--
		d.LedgerClosedCount++
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEvent, event)
	}

	d.Version++
	d.ModifiedDate = event.Meta().EventDateTime
	return nil
}
