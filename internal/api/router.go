// Package api exposes the wallet over HTTP: spend validation, financial
// rules, recurring schedules, users, and transactions.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/engine"
	"github.com/centavohq/centavo/internal/scheduler"
	"github.com/centavohq/centavo/internal/service"
)

// Server wires the application services to HTTP handlers.
type Server struct {
	storage   service.Storage
	ledger    service.Ledger
	evaluator *engine.Evaluator
	scheduler *scheduler.Scheduler
	clock     common.Clock
	auth      AuthOptions
}

// NewServer creates the HTTP facade over the given services.
func NewServer(storage service.Storage, ledger service.Ledger, evaluator *engine.Evaluator, sched *scheduler.Scheduler, clock common.Clock, auth AuthOptions) *Server {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Server{
		storage:   storage,
		ledger:    ledger,
		evaluator: evaluator,
		scheduler: sched,
		clock:     clock,
		auth:      auth,
	}
}

// Routes builds the router. /health is open; everything under /api requires
// a bearer token or API key.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.auth))

		r.Post("/validate-spending", s.handleValidateSpending)

		r.Route("/financial-rules", func(r chi.Router) {
			r.Post("/", s.handleCreateRule)
			r.Get("/user/{userId}", s.handleListRules)
			r.Get("/user/{userId}/progress", s.handleUserProgress)
			r.Get("/{id}", s.handleGetRule)
			r.Get("/{id}/progress", s.handleRuleProgress)
			r.Patch("/{id}/deactivate", s.handleDeactivateRule)
			r.Delete("/{id}", s.handleDeleteRule)
		})

		r.Route("/recurring-transactions", func(r chi.Router) {
			r.Post("/", s.handleCreateRecurring)
			r.Get("/user/{userId}", s.handleListRecurring)
			r.Get("/user/{userId}/cashflow", s.handleCashflow)
			r.Get("/user/{userId}/upcoming", s.handleUpcoming)
			r.Get("/{id}", s.handleGetRecurring)
			r.Put("/{id}", s.handleUpdateRecurring)
			r.Patch("/{id}/toggle", s.handleToggleRecurring)
			r.Patch("/{id}/mark-paid", s.handleMarkPaid)
			r.Delete("/{id}", s.handleDeleteRecurring)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", s.handleCreateTransaction)
			r.Get("/user/{userId}", s.handleListTransactions)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	return r
}
