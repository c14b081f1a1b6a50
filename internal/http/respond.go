package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"soquy/internal/codec"
	"soquy/internal/core"
	"soquy/internal/ledger"
)

// errorBody is the JSON shape of every error response: one plain-language
// message, no internal identifiers.
type errorBody struct {
	Error string `json:"error"`
}

// mutationBody wraps a successful mutation result. Warning is set when the
// change took effect in memory but the snapshot write failed.
type mutationBody struct {
	Message     string            `json:"message"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Imported    int               `json:"imported,omitempty"`
	Warning     string            `json:"warning,omitempty"`
}

const persistWarning = "Saved for this session only: writing to storage failed, changes will not survive a restart."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// classify maps ledger and codec errors onto HTTP statuses and user-facing
// messages.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound, "Transaction not found."
	case errors.Is(err, codec.ErrFormat):
		return http.StatusBadRequest, "The import payload is not in a recognized format. Nothing was imported."
	case errors.Is(err, core.ErrInvalidKind):
		return http.StatusUnprocessableEntity, "Transaction type must be income or expense."
	case errors.Is(err, core.ErrEmptyDescription):
		return http.StatusUnprocessableEntity, "Description must not be empty."
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "Amount must be a positive number."
	case errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity, "Category is not in the list for this transaction type."
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "Date must be a valid calendar date (YYYY-MM-DD)."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}
