package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"soquy/internal/core"
	"soquy/internal/ledger"
)

// transactionRequest is the JSON body for create and update. Amount accepts
// either a JSON number or a numeric string; Type is ignored on update since
// kind is immutable.
type transactionRequest struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

// toDraft validates the field formats and builds a ledger draft. Registry
// membership is the ledger's call.
func (req transactionRequest) toDraft() (ledger.Draft, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return ledger.Draft{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return ledger.Draft{}, err
	}
	return ledger.Draft{
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		Date:        date,
	}, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f := core.Filter{
		Kind:     strings.TrimSpace(r.URL.Query().Get("type")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
	if f.Kind != "" && f.Kind != core.FilterAll {
		if _, err := core.ParseKind(f.Kind); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.ledger.Filter(f))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body is not valid JSON."})
		return
	}

	kind, err := core.ParseKind(req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Create(r.Context(), kind, draft)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		writeError(w, r, err)
		return
	}

	body := mutationBody{Message: "Transaction added.", Transaction: &tx}
	if err != nil {
		body.Warning = persistWarning
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Transaction id must be a number."})
		return
	}

	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Request body is not valid JSON."})
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		writeError(w, r, err)
		return
	}

	tx, err := s.ledger.Update(r.Context(), id, draft)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		writeError(w, r, err)
		return
	}

	body := mutationBody{Message: "Transaction updated.", Transaction: &tx}
	if err != nil {
		body.Warning = persistWarning
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Transaction id must be a number."})
		return
	}

	removed, err := s.ledger.Delete(r.Context(), id)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		writeError(w, r, err)
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Transaction not found."})
		return
	}

	body := mutationBody{Message: "Transaction deleted."}
	if err != nil {
		body.Warning = persistWarning
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Summary())
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.ChartBreakdown())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	tax := s.ledger.Taxonomy()
	kind := strings.TrimSpace(r.URL.Query().Get("type"))
	switch kind {
	case "", core.FilterAll:
		writeJSON(w, http.StatusOK, tax.AllCategories())
	default:
		k, err := core.ParseKind(kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tax.CategoriesFor(k))
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("expense-data-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Could not read the import payload."})
		return
	}
	if int64(len(payload)) > maxImportBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Import payload is too large."})
		return
	}

	count, err := s.ledger.ReplaceAll(r.Context(), payload)
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		writeError(w, r, err)
		return
	}

	body := mutationBody{Message: "Data imported.", Imported: count}
	if err != nil {
		body.Warning = persistWarning
	}
	writeJSON(w, http.StatusOK, body)
}

const maxImportBytes = 8 << 20 // 8MB

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
