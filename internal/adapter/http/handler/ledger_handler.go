package handler

import (
	"context"
	"net/http"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/usecase"
)

// LedgerCommands defines the commands needed by LedgerHandler.
type LedgerCommands interface {
	OpenLedger(ctx context.Context, input usecase.OpenLedgerInput) (*domain.LedgerOpened, error)
	JournalReceipt(ctx context.Context, input usecase.JournalInput) (*domain.ReceiptJournalled, error)
	JournalPayment(ctx context.Context, input usecase.JournalInput) (*domain.PaymentJournalled, error)
	CloseLedger(ctx context.Context, input usecase.CloseLedgerInput) (*domain.LedgerClosed, error)
}

// LedgerQueries defines the reads needed by LedgerHandler.
type LedgerQueries interface {
	GetLedger(ctx context.Context, ledgerID string) (*domain.LedgerView, error)
	GetLedgerList(ctx context.Context, input usecase.ListLedgersInput) (*domain.LedgerPage, error)
	ReplayLedger(ctx context.Context, ledgerID string) (*domain.LedgerView, error)
}

// LedgerHandler handles ledger HTTP requests.
type LedgerHandler struct {
	commands LedgerCommands
	queries  LedgerQueries
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(commands LedgerCommands, queries LedgerQueries) *LedgerHandler {
	return &LedgerHandler{commands: commands, queries: queries}
}

// Open opens a new ledger.
func (h *LedgerHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenLedgerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validLedgerID(req.LedgerID) {
		writeError(w, http.StatusBadRequest, "invalid ledger id", "ledger id must be a UUID", "ledgerId")
		return
	}

	event, err := h.commands.OpenLedger(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to open ledger", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventFromDomain(event))
}

// Receipt journals a receipt.
func (h *LedgerHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDParam(w, r)
	if !ok {
		return
	}

	var req dto.JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.commands.JournalReceipt(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to journal receipt", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventFromDomain(event))
}

// Payment journals a payment.
func (h *LedgerHandler) Payment(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDParam(w, r)
	if !ok {
		return
	}

	var req dto.JournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	event, err := h.commands.JournalPayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to journal payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EventFromDomain(event))
}

// Close closes a ledger.
func (h *LedgerHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDParam(w, r)
	if !ok {
		return
	}

	event, err := h.commands.CloseLedger(r.Context(), usecase.CloseLedgerInput{LedgerID: id})
	if err != nil {
		writeDomainError(w, r, "failed to close ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EventFromDomain(event))
}

// Get returns one ledger from the projection.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.queries.GetLedger(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(view))
}

// Replay rebuilds one ledger straight from its event stream.
func (h *LedgerHandler) Replay(w http.ResponseWriter, r *http.Request) {
	id, ok := ledgerIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.queries.ReplayLedger(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to replay ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromDomain(view))
}

// List returns one page of ledgers.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.queries.GetLedgerList(r.Context(), usecase.ListLedgersInput{
		Page:     parseIntQuery(r, "page", 0),
		PageSize: parseIntQuery(r, "pageSize", domain.DefaultPageSize),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list ledgers", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerPageFromDomain(page))
}
