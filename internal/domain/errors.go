package domain

import (
	"errors"
	"fmt"
)

var (
	// Ledger errors
	ErrLedgerNotFound   = errors.New("ledger not found")
	ErrUnsupportedEvent = errors.New("unsupported event")

	// Validation errors
	ErrInvalidLedgerID    = errors.New("invalid ledger id")
	ErrInvalidName        = errors.New("invalid ledger name")
	ErrInvalidDescription = errors.New("invalid description")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidPage        = errors.New("invalid page")
	ErrInvalidPageSize    = errors.New("invalid page size")

	// Projection errors
	ErrProjectionVersionConflict = errors.New("projection version conflict")
)

// ValidationError ties a validation failure to the request field it came from.
type ValidationError struct {
	Field  string
	Err    error
	Detail string
}

func newValidationError(field string, err error, detail string) *ValidationError {
	return &ValidationError{Field: field, Err: err, Detail: detail}
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
