package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/usecase"
)

// ErrorResponse represents an error in API responses. Field names the
// first offending request field when known; Fields lists all of them.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Field   string   `json:"field,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

// EventResponse is the event a command appended.
type EventResponse struct {
	EventID     string           `json:"eventId"`
	Type        string           `json:"type"`
	LedgerID    string           `json:"ledgerId"`
	LedgerName  string           `json:"ledgerName,omitempty"`
	Description string           `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

// EventFromDomain converts a ledger event to response.
func EventFromDomain(event domain.LedgerEvent) *EventResponse {
	meta := event.Meta()
	resp := &EventResponse{
		EventID:    meta.EventID,
		LedgerID:   event.AggregateID(),
		OccurredAt: meta.EventDateTime,
	}

	switch e := event.(type) {
	case *domain.LedgerOpened:
		resp.Type = "LedgerOpened"
		resp.LedgerName = e.LedgerName
	case *domain.ReceiptJournalled:
		resp.Type = "ReceiptJournalled"
		resp.Description = e.Description
		resp.Amount = &e.Amount
	case *domain.PaymentJournalled:
		resp.Type = "PaymentJournalled"
		resp.Description = e.Description
		resp.Amount = &e.Amount
	case *domain.LedgerClosed:
		resp.Type = "LedgerClosed"
	}

	return resp
}

// EntryResponse is one journal line of a ledger.
type EntryResponse struct {
	EntryID     string          `json:"entryId"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	JournalDate time.Time       `json:"journalDate"`
}

// LedgerResponse represents a ledger with its entries.
type LedgerResponse struct {
	LedgerID     string          `json:"ledgerId"`
	LedgerName   string          `json:"ledgerName"`
	IsOpen       bool            `json:"isOpen"`
	Balance      decimal.Decimal `json:"balance"`
	Entries      []EntryResponse `json:"entries"`
	Version      uint64          `json:"version"`
	ModifiedDate time.Time       `json:"modifiedDate"`
}

// LedgerFromDomain converts a ledger view to response.
func LedgerFromDomain(v *domain.LedgerView) *LedgerResponse {
	entries := make([]EntryResponse, len(v.Entries))
	for i, e := range v.Entries {
		entries[i] = EntryResponse{
			EntryID:     e.EntryID,
			Type:        string(e.Type),
			Description: e.Description,
			Amount:      e.Amount,
			JournalDate: e.JournalDate,
		}
	}

	return &LedgerResponse{
		LedgerID:     v.LedgerID,
		LedgerName:   v.LedgerName,
		IsOpen:       v.IsOpen(),
		Balance:      v.Balance,
		Entries:      entries,
		Version:      v.Version,
		ModifiedDate: v.ModifiedDate,
	}
}

// LedgerSummaryResponse is one row of the ledger list.
type LedgerSummaryResponse struct {
	LedgerID     string          `json:"ledgerId"`
	LedgerName   string          `json:"ledgerName"`
	IsOpen       bool            `json:"isOpen"`
	Balance      decimal.Decimal `json:"balance"`
	Version      uint64          `json:"version"`
	ModifiedDate time.Time       `json:"modifiedDate"`
}

// LedgerListResponse represents one page of ledgers.
type LedgerListResponse struct {
	Results  []LedgerSummaryResponse `json:"results"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
	Count    int                     `json:"count"`
	Total    int64                   `json:"total"`
}

// LedgerPageFromDomain converts a ledger page to response.
func LedgerPageFromDomain(p *domain.LedgerPage) *LedgerListResponse {
	results := make([]LedgerSummaryResponse, len(p.Results))
	for i, s := range p.Results {
		results[i] = LedgerSummaryResponse{
			LedgerID:     s.LedgerID,
			LedgerName:   s.LedgerName,
			IsOpen:       s.Status == domain.LedgerStatusOpen,
			Balance:      s.Balance,
			Version:      s.Version,
			ModifiedDate: s.ModifiedDate,
		}
	}

	return &LedgerListResponse{
		Results:  results,
		Page:     p.Page,
		PageSize: p.PageSize,
		Count:    len(results),
		Total:    p.Total,
	}
}

// DashboardResponse represents the dashboard.
type DashboardResponse struct {
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

// DashboardFromDomain converts the dashboard to response.
func DashboardFromDomain(d *domain.Dashboard) *DashboardResponse {
	return &DashboardResponse{
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

// ProjectionResponse is the status of one projection.
type ProjectionResponse struct {
	Name      string    `json:"name"`
	Position  uint64    `json:"position"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectionStatusResponse lists stored cursors and the running engine state.
type ProjectionStatusResponse struct {
	Projections []ProjectionResponse `json:"projections"`
	Engine      *EngineStatus        `json:"engine,omitempty"`
}

// EngineStatus is the live state of the in-process projection engine.
type EngineStatus struct {
	Name     string `json:"name"`
	State    string `json:"state"`
	Position uint64 `json:"position"`
}

// ProjectionsFromUseCase converts cursors to response.
func ProjectionsFromUseCase(cursors []usecase.ProjectionCursor) []ProjectionResponse {
	result := make([]ProjectionResponse, len(cursors))
	for i, c := range cursors {
		result[i] = ProjectionResponse{
			Name:      c.Name,
			Position:  c.Position,
			UpdatedAt: c.UpdatedAt,
		}
	}
	return result
}
