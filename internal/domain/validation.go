package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxLedgerNameLength  = 255
	MaxDescriptionLength = 255
	DefaultPageSize      = 10
	MaxPageSize          = 200
)

// ValidateLedgerID validates a ledger identifier
func ValidateLedgerID(id string) error {
	if strings.TrimSpace(id) == "" {
		return newValidationError("ledgerId", ErrInvalidLedgerID, "ledger id cannot be empty")
	}
	return nil
}

// ValidateLedgerName validates a ledger name
func ValidateLedgerName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return newValidationError("ledgerName", ErrInvalidName, "name cannot be empty")
	}

	if len(name) > MaxLedgerNameLength {
		return newValidationError("ledgerName", ErrInvalidName,
			fmt.Sprintf("name exceeds %d characters", MaxLedgerNameLength))
	}

	return nil
}

// ValidateDescription validates a journal entry description
func ValidateDescription(description string) error {
	description = strings.TrimSpace(description)

	if description == "" {
		return newValidationError("description", ErrInvalidDescription, "description cannot be empty")
	}

	if len(description) > MaxDescriptionLength {
		return newValidationError("description", ErrInvalidDescription,
			fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength))
	}

	return nil
}

// ValidateAmount validates a journal entry amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return newValidationError("amount", ErrInvalidAmount, "")
	}
	return nil
}

// ValidatePagination validates list paging parameters. page is zero based.
func ValidatePagination(page, pageSize int) error {
	if page < 0 {
		return newValidationError("page", ErrInvalidPage, "page must be zero or greater")
	}

	if pageSize <= 0 || pageSize > MaxPageSize {
		return newValidationError("pageSize", ErrInvalidPageSize,
			fmt.Sprintf("page size must be between 1 and %d", MaxPageSize))
	}

	// The row offset page*pageSize must fit a 32-bit OFFSET.
	if page > math.MaxInt32/pageSize {
		return newValidationError("page", ErrInvalidPage, "page is out of range")
	}

	return nil
}
