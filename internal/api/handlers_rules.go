package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
)

type createRuleRequest struct {
	UserID      string          `json:"userId"`
	RuleType    string          `json:"ruleType"`
	Category    string          `json:"category"`
	AmountLimit decimal.Decimal `json:"amountLimit"`
	Period      string          `json:"period"`
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	kind, err := model.ParseRuleKind(req.RuleType)
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}
	p, err := period.ParseKind(req.Period)
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}

	if _, err := s.storage.GetUser(r.Context(), req.UserID); err != nil {
		respondError(w, r, err)
		return
	}

	rule, err := model.NewFinancialRule(req.UserID, kind, req.Category, req.AmountLimit, p, s.clock.Now())
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}
	if err := s.storage.CreateRule(r.Context(), rule); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newRuleResponse(rule))
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.storage.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRuleResponse(rule))
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.storage.GetActiveRulesByUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]ruleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, newRuleResponse(&rules[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleRuleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.evaluator.RuleProgress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleUserProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.evaluator.UserProgress(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	rule, err := s.storage.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	rule.Deactivate(s.clock.Now())
	if err := s.storage.UpdateRule(r.Context(), rule); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRuleResponse(rule))
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.storage.GetRule(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.storage.DeleteRule(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
