package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
	"github.com/centavohq/centavo/internal/scheduler"
	"github.com/centavohq/centavo/internal/service"
)

type createRecurringRequest struct {
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Frequency   string          `json:"frequency"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	DayOfMonth  *int            `json:"dayOfMonth"`
	DayOfWeek   *int            `json:"dayOfWeek"`
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req createRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	direction, err := model.ParseDirection(req.Type)
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}
	freq, err := period.ParseFrequency(req.Frequency)
	if err != nil {
		respondError(w, r, invalidInput(err.Error()))
		return
	}

	schedule, err := s.scheduler.Create(r.Context(), scheduler.CreateRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Direction:   direction,
		Category:    req.Category,
		Description: req.Description,
		Frequency:   freq,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		DayOfMonth:  req.DayOfMonth,
		DayOfWeek:   req.DayOfWeek,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newRecurringResponse(schedule, s.clock.Now()))
}

type recurringListResponse struct {
	Data                 []recurringResponse `json:"data"`
	TotalMonthlyIncome   decimal.Decimal     `json:"totalMonthlyIncome"`
	TotalMonthlyExpenses decimal.Decimal     `json:"totalMonthlyExpenses"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	filter := service.RecurringFilter{UserID: chi.URLParam(r, "userId")}

	if v := r.URL.Query().Get("type"); v != "" {
		direction, err := model.ParseDirection(v)
		if err != nil {
			respondError(w, r, invalidInput(err.Error()))
			return
		}
		filter.Direction = &direction
	}
	if v := r.URL.Query().Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, r, invalidInput("isActive must be a boolean"))
			return
		}
		filter.IsActive = &active
	}

	schedules, totals, err := s.scheduler.ListByUser(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	now := s.clock.Now()
	data := make([]recurringResponse, 0, len(schedules))
	for i := range schedules {
		data = append(data, newRecurringResponse(&schedules[i], now))
	}
	respondJSON(w, http.StatusOK, recurringListResponse{
		Data:                 data,
		TotalMonthlyIncome:   totals.MonthlyIncome,
		TotalMonthlyExpenses: totals.MonthlyExpenses,
	})
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.scheduler.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecurringResponse(schedule, s.clock.Now()))
}

func (s *Server) handleCashflow(w http.ResponseWriter, r *http.Request) {
	summary, err := s.scheduler.Cashflow(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

type upcomingItemResponse struct {
	recurringResponse
	DaysUntilDue int `json:"daysUntilDue"`
}

type upcomingResponse struct {
	Data        []upcomingItemResponse `json:"data"`
	Count       int                    `json:"count"`
	TotalAmount decimal.Decimal        `json:"totalAmount"`
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	days := 3
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondError(w, r, invalidInput("days must be a non-negative integer"))
			return
		}
		days = parsed
	}

	items, err := s.scheduler.GetUpcoming(r.Context(), chi.URLParam(r, "userId"), days)
	if err != nil {
		respondError(w, r, err)
		return
	}

	now := s.clock.Now()
	out := upcomingResponse{
		Data:        make([]upcomingItemResponse, 0, len(items)),
		Count:       len(items),
		TotalAmount: decimal.Zero,
	}
	for _, item := range items {
		out.TotalAmount = out.TotalAmount.Add(item.Schedule.Amount)
		out.Data = append(out.Data, upcomingItemResponse{
			recurringResponse: newRecurringResponse(item.Schedule, now),
			DaysUntilDue:      item.DaysUntilDue,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

type updateRecurringRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
	EndDate     *time.Time       `json:"endDate"`
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var req updateRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	schedule, err := s.scheduler.Update(r.Context(), chi.URLParam(r, "id"), scheduler.UpdateRequest{
		Amount:      req.Amount,
		Description: req.Description,
		EndDate:     req.EndDate,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecurringResponse(schedule, s.clock.Now()))
}

type toggleRecurringRequest struct {
	IsActive bool `json:"isActive"`
}

func (s *Server) handleToggleRecurring(w http.ResponseWriter, r *http.Request) {
	var req toggleRecurringRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	schedule, err := s.scheduler.ToggleActive(r.Context(), chi.URLParam(r, "id"), req.IsActive)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecurringResponse(schedule, s.clock.Now()))
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.scheduler.MarkAsPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newRecurringResponse(schedule, s.clock.Now()))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.scheduler.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
