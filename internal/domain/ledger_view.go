package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/eventsourcing"
)

// EntryType distinguishes receipts from payments.
type EntryType string

const (
	EntryTypeReceipt EntryType = "receipt"
	EntryTypePayment EntryType = "payment"
)

// JournalEntry is one line of a ledger view. Payments carry a negative amount.
type JournalEntry struct {
	EntryID     string          `json:"entryId"`
	Type        EntryType       `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	JournalDate time.Time       `json:"journalDate"`
}

// LedgerView is the query model of one ledger.
type LedgerView struct {
	LedgerID     string
	LedgerName   string
	Status       LedgerStatus
	Balance      decimal.Decimal
	Entries      []JournalEntry
	Version      uint64
	ModifiedDate time.Time
}

// AggregateKind implements eventsourcing.Aggregate.
func (v *LedgerView) AggregateKind() string { return LedgerKind }

// CurrentVersion implements eventsourcing.Aggregate.
func (v *LedgerView) CurrentVersion() uint64 { return v.Version }

// IsOpen reports whether the ledger accepts entries.
func (v *LedgerView) IsOpen() bool { return v.Status == LedgerStatusOpen }

// Apply implements eventsourcing.Aggregate.
func (v *LedgerView) Apply(event eventsourcing.Event) error {
	status := v.Status
	if status == "" {
		status = LedgerStatusUnopened
	}
	if err := checkTransition(v, status, v.Balance, event); err != nil {
		return err
	}

	at := event.Meta().EventDateTime
	switch e := event.(type) {
	case *LedgerOpened:
		v.LedgerID = e.LedgerID
		v.LedgerName = e.LedgerName
		v.Status = LedgerStatusOpen
	case *ReceiptJournalled:
		v.Balance = v.Balance.Add(e.Amount)
		v.Entries = append(v.Entries, JournalEntry{
			EntryID:     e.EventID,
			Type:        EntryTypeReceipt,
			Description: e.Description,
			Amount:      e.Amount,
			JournalDate: at,
		})
	case *PaymentJournalled:
		v.Balance = v.Balance.Sub(e.Amount)
		v.Entries = append(v.Entries, JournalEntry{
			EntryID:     e.EventID,
			Type:        EntryTypePayment,
			Description: e.Description,
			Amount:      e.Amount.Neg(),
			JournalDate: at,
		})
	case *LedgerClosed:
		v.Status = LedgerStatusClosed
	}

	v.Version++
	v.ModifiedDate = at
	return nil
}

// Summary returns the list row of the view.
func (v *LedgerView) Summary() LedgerSummary {
	return LedgerSummary{
		LedgerID:     v.LedgerID,
		LedgerName:   v.LedgerName,
		Status:       v.Status,
		Balance:      v.Balance,
		Version:      v.Version,
		ModifiedDate: v.ModifiedDate,
	}
}

// LedgerSummary is a ledger without its entries.
type LedgerSummary struct {
	LedgerID     string
	LedgerName   string
	Status       LedgerStatus
	Balance      decimal.Decimal
	Version      uint64
	ModifiedDate time.Time
}

// LedgerPage is one page of the ledger list. Page is zero based.
type LedgerPage struct {
	Results  []LedgerSummary
	Page     int
	PageSize int
	Total    int64
}
