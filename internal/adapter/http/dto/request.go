package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/usecase"
)

// OpenLedgerRequest represents a request to open a ledger.
type OpenLedgerRequest struct {
	LedgerID   string `json:"ledgerId"`
	LedgerName string `json:"ledgerName"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenLedgerRequest) ToUseCaseInput() usecase.OpenLedgerInput {
	return usecase.OpenLedgerInput{
		LedgerID:   r.LedgerID,
		LedgerName: r.LedgerName,
	}
}

// JournalRequest represents a receipt or payment request. The ledger id
// comes from the path.
type JournalRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *JournalRequest) ToUseCaseInput(ledgerID string) usecase.JournalInput {
	return usecase.JournalInput{
		LedgerID:    ledgerID,
		Description: r.Description,
		Amount:      r.Amount,
	}
}
