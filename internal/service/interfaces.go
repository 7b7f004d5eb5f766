// Package service defines the interfaces and shared result types for the
// application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
)

// TransactionFilter defines filtering options for ledger queries. Nil time
// bounds are open-ended; an empty category matches every category.
type TransactionFilter struct {
	Start    *time.Time
	End      *time.Time
	UserID   string
	Category string
	Limit    int
	Offset   int
}

// RecurringFilter narrows recurring-schedule listings.
type RecurringFilter struct {
	Direction *model.Direction
	IsActive  *bool
	UserID    string
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Ledger operations. RecordTransaction inserts the entry and applies its
	// balance delta to the owning user in a single database transaction;
	// DeleteTransaction removes the entry and reverses the delta.
	RecordTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Financial rule operations
	CreateRule(ctx context.Context, rule *model.FinancialRule) error
	GetRule(ctx context.Context, id string) (*model.FinancialRule, error)
	GetActiveRulesByUser(ctx context.Context, userID string) ([]model.FinancialRule, error)
	UpdateRule(ctx context.Context, rule *model.FinancialRule) error
	DeleteRule(ctx context.Context, id string) error

	// Recurring transaction operations
	CreateRecurring(ctx context.Context, recurring *model.RecurringTransaction) error
	GetRecurring(ctx context.Context, id string) (*model.RecurringTransaction, error)
	GetRecurringByUser(ctx context.Context, filter RecurringFilter) ([]model.RecurringTransaction, error)
	GetDueRecurring(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error)
	UpdateRecurring(ctx context.Context, recurring *model.RecurringTransaction) error
	DeleteRecurring(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// Ledger is the transaction-creation collaborator consumed by the scheduler
// and the API layer. Implementations serialize balance mutation per user.
type Ledger interface {
	Record(ctx context.Context, req RecordRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// RecordRequest describes a ledger entry to create.
type RecordRequest struct {
	OccurredAt  *time.Time
	UserID      string
	Category    string
	Description string
	Direction   model.Direction
	Source      model.Source
	Amount      decimal.Decimal
}

// SweepError pairs a failed schedule with the error that stopped it.
type SweepError struct {
	Err        error
	ScheduleID string
}

// SweepResult summarizes one due-sweep pass: every due schedule was
// attempted, failures are collected rather than aborting the batch.
type SweepResult struct {
	Errors    []SweepError
	Processed int
	Failed    int
}

// CashflowItem is one category's share of recurring income or expenses.
type CashflowItem struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CashflowSummary aggregates monthly-frequency recurring schedules into a
// projected monthly cash flow.
type CashflowSummary struct {
	IncomeBreakdown      []CashflowItem  `json:"incomeBreakdown"`
	ExpenseBreakdown     []CashflowItem  `json:"expenseBreakdown"`
	TotalMonthlyIncome   decimal.Decimal `json:"totalMonthlyIncome"`
	TotalMonthlyExpenses decimal.Decimal `json:"totalMonthlyExpenses"`
	NetMonthlyCashflow   decimal.Decimal `json:"netMonthlyCashflow"`
}

// RecurringTotals accompanies a schedule listing with the monthly-frequency
// income and expense sums of the listed schedules.
type RecurringTotals struct {
	MonthlyIncome   decimal.Decimal `json:"totalMonthlyIncome"`
	MonthlyExpenses decimal.Decimal `json:"totalMonthlyExpenses"`
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
