package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ledgers?pageSize=50", nil)
	if got := parseIntQuery(req, "pageSize", 10); got != 50 {
		t.Fatalf("expected pageSize=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ledgers?pageSize=invalid", nil)
	if got := parseIntQuery(req, "pageSize", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "pageSize", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	validation := domain.ValidateDescription("")
	joined := errors.Join(
		domain.ValidateLedgerID(""),
		domain.ValidateDescription(""),
		domain.ValidateAmount(decimal.Zero),
	)
	transition := eventsourcing.NewInvalidStateTransition(&domain.Ledger{}, &domain.PaymentJournalled{}, "insufficient funds").
		WithField("amount")

	tests := []struct {
		name       string
		err        error
		expected   int
		wantFields []string
	}{
		{"validation", validation, http.StatusBadRequest, []string{"description"}},
		{"wrapped validation", fmt.Errorf("open: %w", validation), http.StatusBadRequest, []string{"description"}},
		{"joined validation", fmt.Errorf("journal: %w", joined), http.StatusBadRequest, []string{"ledgerId", "description", "amount"}},
		{"state transition", transition, http.StatusBadRequest, []string{"amount"}},
		{"concurrency", &eventsourcing.ConcurrencyError{ExpectedVersion: 1, ActualVersion: 2}, http.StatusConflict, nil},
		{"not found", domain.ErrLedgerNotFound, http.StatusNotFound, nil},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			status, fields := mapDomainError(tt.err)
			if status != tt.expected || !slices.Equal(fields, tt.wantFields) {
				t.Fatalf("expected (%d, %v), got (%d, %v)", tt.expected, tt.wantFields, status, fields)
			}
		})
	}
}

func TestWriteDomainErrorNamesEveryField(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	err := errors.Join(domain.ValidateDescription(""), domain.ValidateAmount(decimal.Zero))

	writeDomainError(rr, req, "invalid request", err)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Field != "description" || !slices.Equal(resp.Fields, []string{"description", "amount"}) {
		t.Fatalf("unexpected fields in %+v", resp)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	var logs bytes.Buffer
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(zerolog.New(&logs).WithContext(req.Context()))

	writeDomainError(rr, req, "failed", errors.New("connection refused to 10.0.0.1"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "failed" || resp.Message != "" {
		t.Fatalf("unexpected error response %+v", resp)
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Fatalf("expected the cause to be logged, got %q", logs.String())
	}
}
