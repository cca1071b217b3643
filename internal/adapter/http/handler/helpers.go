package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/ledger-es/internal/adapter/http/dto"
	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details, field string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
		Field:   field,
	})
}

// writeDomainError maps err to a status and writes it under message.
// Internal errors are logged and their details withheld from the client.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status, fields := mapDomainError(err)
	resp := dto.ErrorResponse{Error: message, Message: err.Error(), Fields: fields}
	if len(fields) > 0 {
		resp.Field = fields[0]
	}
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
		resp.Message = ""
	}
	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes and the offending
// request fields, when known.
func mapDomainError(err error) (int, []string) {
	var (
		transition *eventsourcing.InvalidStateTransitionError
		conflict   *eventsourcing.ConcurrencyError
	)

	if fields := validationFields(err); len(fields) > 0 {
		return http.StatusBadRequest, fields
	}

	switch {
	case errors.As(err, &transition):
		if transition.Field == "" {
			return http.StatusBadRequest, nil
		}
		return http.StatusBadRequest, []string{transition.Field}
	case errors.As(err, &conflict):
		return http.StatusConflict, nil
	case errors.Is(err, domain.ErrLedgerNotFound):
		return http.StatusNotFound, nil
	default:
		return http.StatusInternalServerError, nil
	}
}

// validationFields collects the field of every ValidationError in err's
// tree, joined errors included, without repeats.
func validationFields(err error) []string {
	var fields []string
	var walk func(error)
	walk = func(e error) {
		switch x := e.(type) {
		case nil:
		case *domain.ValidationError:
			if !slices.Contains(fields, x.Field) {
				fields = append(fields, x.Field)
			}
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return fields
}

// ledgerIDParam returns the {id} path parameter, writing a 400 when it is
// not a UUID.
func ledgerIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !validLedgerID(id) {
		writeError(w, http.StatusBadRequest, "invalid ledger id", "ledger id must be a UUID", "ledgerId")
		return "", false
	}
	return id, true
}

func validLedgerID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error(), "")
		return false
	}
	return true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
