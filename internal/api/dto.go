package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
)

// Response shapes. Domain entities stay free of transport tags; the mapping
// lives here.

type userResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phoneNumber,omitempty"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func newUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		CurrentBalance: u.CurrentBalance,
		CreatedAt:      u.CreatedAt,
	}
}

type transactionResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"source"`
	OccurredAt  time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        string(t.Direction),
		Category:    t.Category,
		Description: t.Description,
		Source:      string(t.Source),
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
	}
}

type ruleResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	RuleType    string          `json:"ruleType"`
	Category    string          `json:"category,omitempty"`
	AmountLimit decimal.Decimal `json:"amountLimit"`
	Period      string          `json:"period"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newRuleResponse(r *model.FinancialRule) ruleResponse {
	return ruleResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		RuleType:    string(r.Kind),
		Category:    r.Category,
		AmountLimit: r.AmountLimit,
		Period:      string(r.Period),
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

type recurringResponse struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Amount            decimal.Decimal `json:"amount"`
	Type              string          `json:"type"`
	Category          string          `json:"category"`
	Description       string          `json:"description,omitempty"`
	Frequency         string          `json:"frequency"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
	NextExecutionDate time.Time       `json:"nextExecutionDate"`
	LastPaidDate      *time.Time      `json:"lastPaidDate,omitempty"`
	DayOfMonth        *int            `json:"dayOfMonth,omitempty"`
	DayOfWeek         *int            `json:"dayOfWeek,omitempty"`
	IsActive          bool            `json:"isActive"`
	IsPaidThisPeriod  bool            `json:"isPaidThisPeriod"`
	PaymentStatus     string          `json:"paymentStatus"`
	CreatedAt         time.Time       `json:"createdAt"`
}

func newRecurringResponse(r *model.RecurringTransaction, now time.Time) recurringResponse {
	return recurringResponse{
		ID:                r.ID,
		UserID:            r.UserID,
		Amount:            r.Amount,
		Type:              string(r.Direction),
		Category:          r.Category,
		Description:       r.Description,
		Frequency:         string(r.Frequency),
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		NextExecutionDate: r.NextExecutionDate,
		LastPaidDate:      r.LastPaidDate,
		DayOfMonth:        r.DayOfMonth,
		DayOfWeek:         r.DayOfWeek,
		IsActive:          r.IsActive,
		IsPaidThisPeriod:  r.IsPaidThisPeriod(),
		PaymentStatus:     string(r.PaymentStatus(now)),
		CreatedAt:         r.CreatedAt,
	}
}
