package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
)

type createUserRequest struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phoneNumber"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := model.NewUser(req.Name, req.Email, req.PhoneNumber, req.InitialBalance, s.clock.Now())
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}
	if err := s.storage.CreateUser(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newUserResponse(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.storage.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserResponse(user))
}
