package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/engine"
)

type validateSpendingRequest struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// handleValidateSpending runs a proposed spend through the rule engine. The
// verdict is advisory: nothing is recorded.
func (s *Server) handleValidateSpending(w http.ResponseWriter, r *http.Request) {
	var req validateSpendingRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	verdict, err := s.evaluator.ValidateSpending(r.Context(), engine.ValidateRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, verdict)
}
