package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/service"
)

type createTransactionRequest struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Source      string          `json:"source"`
	Date        *time.Time      `json:"date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	direction, err := model.ParseDirection(req.Type)
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}
	source := model.SourceManual
	if req.Source != "" {
		if source, err = model.ParseSource(req.Source); err != nil {
			respondError(w, r, invalidInput(err.Error()))
			return
		}
	}

	txn, err := s.ledger.Record(r.Context(), service.RecordRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Direction:   direction,
		Category:    req.Category,
		Description: req.Description,
		Source:      source,
		OccurredAt:  req.Date,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(txn))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := service.TransactionFilter{UserID: chi.URLParam(r, "userId")}
	query := r.URL.Query()

	if v := query.Get("category"); v != "" {
		filter.Category = v
	}
	for name, dst := range map[string]**time.Time{"start": &filter.Start, "end": &filter.End} {
		v := query.Get(name)
		if v == "" {
			continue
		}
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, r, invalidInput(name + " must be RFC 3339"))
			return
		}
		*dst = &parsed
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(w, r, invalidInput("limit must be a non-negative integer"))
			return
		}
		filter.Limit = limit
	}

	txns, err := s.storage.GetTransactions(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]transactionResponse, 0, len(txns))
	for i := range txns {
		out = append(out, newTransactionResponse(&txns[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
