package notifier

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/domain"
)

// Message is the wire form of a domain.ChangeNotification.
type Message struct {
	Kind      domain.ChangeKind `json:"kind"`
	LedgerID  string            `json:"ledgerId,omitempty"`
	Position  uint64            `json:"position"`
	Ledger    *LedgerPayload    `json:"ledger,omitempty"`
	Dashboard *DashboardPayload `json:"dashboard,omitempty"`
}

// LedgerPayload is a ledger view snapshot.
type LedgerPayload struct {
	LedgerID     string                `json:"ledgerId"`
	LedgerName   string                `json:"ledgerName"`
	IsOpen       bool                  `json:"isOpen"`
	Balance      decimal.Decimal       `json:"balance"`
	Entries      []domain.JournalEntry `json:"entries"`
	Version      uint64                `json:"version"`
	ModifiedDate time.Time             `json:"modifiedDate"`
}

// DashboardPayload is a dashboard snapshot.
type DashboardPayload struct {
	LedgerCount       int64           `json:"ledgerCount"`
	LedgerOpenCount   int64           `json:"ledgerOpenCount"`
	LedgerClosedCount int64           `json:"ledgerClosedCount"`
	TransactionCount  int64           `json:"transactionCount"`
	ReceiptCount      int64           `json:"receiptCount"`
	PaymentCount      int64           `json:"paymentCount"`
	NetAmount         decimal.Decimal `json:"netAmount"`
	ReceiptAmount     decimal.Decimal `json:"receiptAmount"`
	PaymentAmount     decimal.Decimal `json:"paymentAmount"`
	Version           uint64          `json:"version"`
	ModifiedDate      time.Time       `json:"modifiedDate"`
}

// NewMessage converts a notification to its wire form.
func NewMessage(n domain.ChangeNotification) Message {
	m := Message{
		Kind:     n.Kind,
		LedgerID: n.LedgerID,
		Position: n.Position,
	}
	if v := n.Ledger; v != nil {
		m.Ledger = &LedgerPayload{
			LedgerID:     v.LedgerID,
			LedgerName:   v.LedgerName,
			IsOpen:       v.IsOpen(),
			Balance:      v.Balance,
			Entries:      v.Entries,
			Version:      v.Version,
			ModifiedDate: v.ModifiedDate,
		}
	}
	if d := n.Dashboard; d != nil {
		m.Dashboard = &DashboardPayload{
			LedgerCount:       d.LedgerCount,
			LedgerOpenCount:   d.LedgerOpenCount,
			LedgerClosedCount: d.LedgerClosedCount,
			TransactionCount:  d.TransactionCount,
			ReceiptCount:      d.ReceiptCount,
			PaymentCount:      d.PaymentCount,
			NetAmount:         d.NetAmount,
			ReceiptAmount:     d.ReceiptAmount,
			PaymentAmount:     d.PaymentAmount,
			Version:           d.Version,
			ModifiedDate:      d.ModifiedDate,
		}
	}
	return m
}

// Encode returns the JSON wire form of n.
func Encode(n domain.ChangeNotification) ([]byte, error) {
	return json.Marshal(NewMessage(n))
}
