// Package scheduler manages recurring transaction schedules and the due-sweep
// that materializes them into ledger entries.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
	"github.com/centavohq/centavo/internal/service"
)

// Scheduler owns the lifecycle of recurring transactions. Only one due-sweep
// runs at a time per process; overlapping requests fail fast instead of
// queueing.
type Scheduler struct {
	storage service.Storage
	ledger  service.Ledger
	clock   common.Clock
	sweepMu sync.Mutex
}

// NewScheduler creates a scheduler backed by the given storage and ledger.
func NewScheduler(storage service.Storage, ledger service.Ledger, clock common.Clock) *Scheduler {
	if clock == nil {
		clock = common.RealClock{}
	}
	return &Scheduler{
		storage: storage,
		ledger:  ledger,
		clock:   clock,
	}
}

// CreateRequest describes a recurring schedule to create.
type CreateRequest struct {
	StartDate   time.Time
	EndDate     *time.Time
	DayOfMonth  *int
	DayOfWeek   *int
	UserID      string
	Category    string
	Description string
	Direction   model.Direction
	Frequency   period.Frequency
	Amount      decimal.Decimal
}

// UpdateRequest carries the mutable fields of a schedule. Nil fields are left
// unchanged.
type UpdateRequest struct {
	Amount      *decimal.Decimal
	Description *string
	EndDate     *time.Time
}

// UpcomingItem is a schedule annotated with its proximity to the next
// occurrence.
type UpcomingItem struct {
	Schedule     *model.RecurringTransaction `json:"schedule"`
	DaysUntilDue int                         `json:"daysUntilDue"`
	Status       model.PaymentStatus         `json:"paymentStatus"`
}

// Create registers a new recurring schedule for an existing user.
func (s *Scheduler) Create(ctx context.Context, req CreateRequest) (*model.RecurringTransaction, error) {
	if _, err := s.storage.GetUser(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("creating recurring transaction: %w", err)
	}

	now := s.clock.Now()
	recurring, err := model.NewRecurringTransaction(req.UserID, req.Amount, req.Direction,
		req.Category, req.Description, req.Frequency, req.StartDate, req.EndDate,
		req.DayOfMonth, req.DayOfWeek, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidInput, err)
	}

	if err := s.storage.CreateRecurring(ctx, recurring); err != nil {
		return nil, fmt.Errorf("creating recurring transaction: %w", err)
	}

	slog.Info("Recurring transaction created",
		"schedule_id", recurring.ID,
		"user_id", recurring.UserID,
		"frequency", recurring.Frequency,
		"next_execution", recurring.NextExecutionDate.Format("2006-01-02"))
	return recurring, nil
}

// Update changes a schedule's amount, description, or end date.
func (s *Scheduler) Update(ctx context.Context, id string, req UpdateRequest) (*model.RecurringTransaction, error) {
	recurring, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("updating recurring transaction: %w", err)
	}

	if err := recurring.Update(req.Amount, req.Description, req.EndDate, s.clock.Now()); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidInput, err)
	}

	if err := s.storage.UpdateRecurring(ctx, recurring); err != nil {
		return nil, fmt.Errorf("updating recurring transaction: %w", err)
	}
	return recurring, nil
}

// ToggleActive sets a schedule's active flag to the requested value.
// Asserting the current state is a no-op write, not an error.
func (s *Scheduler) ToggleActive(ctx context.Context, id string, isActive bool) (*model.RecurringTransaction, error) {
	recurring, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggling recurring transaction: %w", err)
	}

	now := s.clock.Now()
	if isActive {
		recurring.Activate(now)
	} else {
		recurring.Deactivate(now)
	}

	if err := s.storage.UpdateRecurring(ctx, recurring); err != nil {
		return nil, fmt.Errorf("toggling recurring transaction: %w", err)
	}

	slog.Info("Recurring transaction toggled",
		"schedule_id", recurring.ID,
		"is_active", recurring.IsActive)
	return recurring, nil
}

// MarkAsPaid settles the current period without creating a ledger entry or
// advancing the schedule. Used when the user paid the bill outside the app.
func (s *Scheduler) MarkAsPaid(ctx context.Context, id string) (*model.RecurringTransaction, error) {
	recurring, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("marking recurring transaction paid: %w", err)
	}

	recurring.MarkPaid(s.clock.Now())
	if err := s.storage.UpdateRecurring(ctx, recurring); err != nil {
		return nil, fmt.Errorf("marking recurring transaction paid: %w", err)
	}
	return recurring, nil
}

// Delete removes a schedule. Ledger entries it already materialized are kept.
func (s *Scheduler) Delete(ctx context.Context, id string) error {
	if _, err := s.storage.GetRecurring(ctx, id); err != nil {
		return fmt.Errorf("deleting recurring transaction: %w", err)
	}
	if err := s.storage.DeleteRecurring(ctx, id); err != nil {
		return fmt.Errorf("deleting recurring transaction: %w", err)
	}
	slog.Info("Recurring transaction deleted", "schedule_id", id)
	return nil
}

// Get returns a single schedule by id.
func (s *Scheduler) Get(ctx context.Context, id string) (*model.RecurringTransaction, error) {
	recurring, err := s.storage.GetRecurring(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting recurring transaction: %w", err)
	}
	return recurring, nil
}

// ListByUser returns a user's schedules, optionally filtered, together with
// the monthly-frequency income and expense totals of the result set.
func (s *Scheduler) ListByUser(ctx context.Context, filter service.RecurringFilter) ([]model.RecurringTransaction, service.RecurringTotals, error) {
	schedules, err := s.storage.GetRecurringByUser(ctx, filter)
	if err != nil {
		return nil, service.RecurringTotals{}, fmt.Errorf("listing recurring transactions: %w", err)
	}

	totals := service.RecurringTotals{
		MonthlyIncome:   decimal.Zero,
		MonthlyExpenses: decimal.Zero,
	}
	for i := range schedules {
		if schedules[i].Frequency != period.FreqMonthly {
			continue
		}
		switch schedules[i].Direction {
		case model.DirectionIncome:
			totals.MonthlyIncome = totals.MonthlyIncome.Add(schedules[i].Amount)
		case model.DirectionExpense:
			totals.MonthlyExpenses = totals.MonthlyExpenses.Add(schedules[i].Amount)
		}
	}
	return schedules, totals, nil
}

// GetUpcoming returns the user's active schedules due within the given number
// of days, soonest first, annotated with payment status. Overdue schedules
// are included.
func (s *Scheduler) GetUpcoming(ctx context.Context, userID string, days int) ([]UpcomingItem, error) {
	active := true
	schedules, err := s.storage.GetRecurringByUser(ctx, service.RecurringFilter{
		UserID:   userID,
		IsActive: &active,
	})
	if err != nil {
		return nil, fmt.Errorf("getting upcoming transactions: %w", err)
	}

	now := s.clock.Now()
	items := make([]UpcomingItem, 0, len(schedules))
	for i := range schedules {
		schedule := &schedules[i]
		if !schedule.IsDueWithinDays(now, days) {
			continue
		}
		items = append(items, UpcomingItem{
			Schedule:     schedule,
			DaysUntilDue: schedule.DaysUntilDue(now),
			Status:       schedule.PaymentStatus(now),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Schedule.NextExecutionDate.Before(items[j].Schedule.NextExecutionDate)
	})
	return items, nil
}

// Cashflow projects the user's monthly cash flow from active monthly-frequency
// schedules, broken down by category.
func (s *Scheduler) Cashflow(ctx context.Context, userID string) (*service.CashflowSummary, error) {
	active := true
	schedules, err := s.storage.GetRecurringByUser(ctx, service.RecurringFilter{
		UserID:   userID,
		IsActive: &active,
	})
	if err != nil {
		return nil, fmt.Errorf("computing cashflow: %w", err)
	}

	incomeByCategory := make(map[string]decimal.Decimal)
	expenseByCategory := make(map[string]decimal.Decimal)
	summary := &service.CashflowSummary{
		TotalMonthlyIncome:   decimal.Zero,
		TotalMonthlyExpenses: decimal.Zero,
		NetMonthlyCashflow:   decimal.Zero,
	}

	for i := range schedules {
		schedule := &schedules[i]
		if schedule.Frequency != period.FreqMonthly {
			continue
		}
		switch schedule.Direction {
		case model.DirectionIncome:
			summary.TotalMonthlyIncome = summary.TotalMonthlyIncome.Add(schedule.Amount)
			incomeByCategory[schedule.Category] = incomeByCategory[schedule.Category].Add(schedule.Amount)
		case model.DirectionExpense:
			summary.TotalMonthlyExpenses = summary.TotalMonthlyExpenses.Add(schedule.Amount)
			expenseByCategory[schedule.Category] = expenseByCategory[schedule.Category].Add(schedule.Amount)
		}
	}

	summary.NetMonthlyCashflow = summary.TotalMonthlyIncome.Sub(summary.TotalMonthlyExpenses)
	summary.IncomeBreakdown = breakdownOf(incomeByCategory)
	summary.ExpenseBreakdown = breakdownOf(expenseByCategory)
	return summary, nil
}

func breakdownOf(byCategory map[string]decimal.Decimal) []service.CashflowItem {
	items := make([]service.CashflowItem, 0, len(byCategory))
	for category, amount := range byCategory {
		items = append(items, service.CashflowItem{Category: category, Amount: amount})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Category < items[j].Category })
	return items
}

// ProcessDue materializes every schedule whose next occurrence has arrived.
// A failed schedule is recorded and skipped; the batch always runs to the
// end. Only one sweep runs at a time; a concurrent call returns
// common.ErrSweepInProgress immediately.
func (s *Scheduler) ProcessDue(ctx context.Context) (*service.SweepResult, error) {
	if !s.sweepMu.TryLock() {
		return nil, common.ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	now := s.clock.Now()
	due, err := s.storage.GetDueRecurring(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("loading due recurring transactions: %w", err)
	}

	result := &service.SweepResult{}
	for i := range due {
		schedule := &due[i]
		if !schedule.ShouldExecute(now) {
			continue
		}
		if err := s.execute(ctx, schedule, now); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, service.SweepError{
				ScheduleID: schedule.ID,
				Err:        err,
			})
			slog.Error("Recurring transaction failed",
				"schedule_id", schedule.ID,
				"user_id", schedule.UserID,
				"error", err)
			continue
		}
		result.Processed++
	}

	if result.Processed > 0 || result.Failed > 0 {
		slog.Info("Due sweep finished",
			"processed", result.Processed,
			"failed", result.Failed)
	}
	return result, nil
}

// execute materializes one occurrence: record the ledger entry, then advance
// the schedule. The schedule is only advanced after the entry commits, so a
// crash between the two repeats the occurrence rather than skipping it.
func (s *Scheduler) execute(ctx context.Context, schedule *model.RecurringTransaction, now time.Time) error {
	occurredAt := schedule.NextExecutionDate

	var txn *model.Transaction
	err := common.WithRetry(ctx, func() error {
		var recordErr error
		txn, recordErr = s.ledger.Record(ctx, service.RecordRequest{
			UserID:      schedule.UserID,
			Amount:      schedule.Amount,
			Direction:   schedule.Direction,
			Category:    schedule.Category,
			Description: schedule.Description + " (Recurring)",
			Source:      model.SourceAutomatic,
			OccurredAt:  &occurredAt,
		})
		if recordErr != nil &&
			(errors.Is(recordErr, common.ErrNotFound) || errors.Is(recordErr, common.ErrInvalidInput)) {
			return &common.RetryableError{Err: recordErr, Retryable: false}
		}
		return recordErr
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: 100 * time.Millisecond})
	if err != nil {
		return fmt.Errorf("recording occurrence: %w", err)
	}

	schedule.MarkPaid(now)
	schedule.Advance(now)
	if err := s.storage.UpdateRecurring(ctx, schedule); err != nil {
		// The entry exists but the schedule did not advance. The next sweep
		// will materialize the same occurrence again, which the operator can
		// reconcile from the log line below.
		slog.Error("Recurring transaction recorded but schedule not advanced",
			"schedule_id", schedule.ID,
			"transaction_id", txn.ID,
			"error", err)
		return fmt.Errorf("advancing schedule: %w", err)
	}

	slog.Info("Recurring transaction executed",
		"schedule_id", schedule.ID,
		"transaction_id", txn.ID,
		"amount", schedule.Amount.String(),
		"next_execution", schedule.NextExecutionDate.Format("2006-01-02"))
	return nil
}

// Sweeper is the loop interface the serve command drives on a ticker.
type Sweeper interface {
	ProcessDue(ctx context.Context) (*service.SweepResult, error)
}

var _ Sweeper = (*Scheduler)(nil)

// RunSweepLoop runs ProcessDue on the given interval until the context is
// canceled. An in-progress sweep from another caller is not an error.
func RunSweepLoop(ctx context.Context, sweeper Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sweeper.ProcessDue(ctx); err != nil && !errors.Is(err, common.ErrSweepInProgress) {
				slog.Error("Due sweep failed", "error", err)
			}
		}
	}
}
