package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/period"
)

// PaymentStatus is the per-period settlement state of a recurring schedule.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// RecurringTransaction is a schedule that materializes a ledger transaction
// once per frequency step. NextExecutionDate only ever moves forward, one
// step per successful materialization, so a delayed sweep does not shift the
// cadence.
type RecurringTransaction struct {
	StartDate         time.Time
	NextExecutionDate time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	EndDate           *time.Time
	LastPaidDate      *time.Time
	DayOfMonth        *int
	DayOfWeek         *int
	ID                string
	UserID            string
	Category          string
	Description       string
	Direction         Direction
	Frequency         period.Frequency
	Amount            decimal.Decimal
	IsActive          bool
}

// NewRecurringTransaction creates an active schedule. The first execution
// date is one frequency step after the start date, aligned to the optional
// day-of-month (monthly) or day-of-week (weekly) anchor.
func NewRecurringTransaction(userID string, amount decimal.Decimal, direction Direction, category, description string, freq period.Frequency, startDate time.Time, endDate *time.Time, dayOfMonth, dayOfWeek *int, now time.Time) (*RecurringTransaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("recurring transaction: user id is required")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("recurring transaction: amount must be positive, got %s", amount)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("recurring transaction: unknown direction %q", direction)
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("recurring transaction: category is required")
	}
	if !freq.Valid() {
		return nil, fmt.Errorf("recurring transaction: unknown frequency %q", freq)
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, fmt.Errorf("recurring transaction: end date %s precedes start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	if dayOfMonth != nil && (*dayOfMonth < 1 || *dayOfMonth > 31) {
		return nil, fmt.Errorf("recurring transaction: day of month must be 1-31, got %d", *dayOfMonth)
	}
	if dayOfWeek != nil && (*dayOfWeek < 0 || *dayOfWeek > 6) {
		return nil, fmt.Errorf("recurring transaction: day of week must be 0-6, got %d", *dayOfWeek)
	}

	startDate = startDate.UTC()
	next := period.Next(freq, startDate)
	next = alignToAnchor(next, freq, dayOfMonth, dayOfWeek)

	return &RecurringTransaction{
		ID:                uuid.NewString(),
		UserID:            userID,
		Amount:            amount,
		Direction:         direction,
		Category:          category,
		Description:       description,
		Frequency:         freq,
		StartDate:         startDate,
		EndDate:           endDate,
		DayOfMonth:        dayOfMonth,
		DayOfWeek:         dayOfWeek,
		NextExecutionDate: next,
		IsActive:          true,
		CreatedAt:         now.UTC(),
		UpdatedAt:         now.UTC(),
	}, nil
}

// alignToAnchor nudges a computed occurrence onto the schedule's anchor day.
// Monthly schedules clamp the anchor to the target month's length; weekly
// schedules roll forward to the anchored weekday (0 = Sunday).
func alignToAnchor(next time.Time, freq period.Frequency, dayOfMonth, dayOfWeek *int) time.Time {
	switch {
	case freq == period.FreqMonthly && dayOfMonth != nil:
		year, month, _ := next.Date()
		day := *dayOfMonth
		if last := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day(); day > last {
			day = last
		}
		return time.Date(year, month, day, next.Hour(), next.Minute(), next.Second(), next.Nanosecond(), time.UTC)
	case freq == period.FreqWeekly && dayOfWeek != nil:
		offset := (*dayOfWeek - int(next.Weekday()) + 7) % 7
		return next.AddDate(0, 0, offset)
	}
	return next
}

// Advance moves the schedule to its next occurrence after a successful
// materialization. The execution date never moves backwards.
func (r *RecurringTransaction) Advance(now time.Time) {
	r.NextExecutionDate = period.Next(r.Frequency, r.NextExecutionDate)
	r.UpdatedAt = now.UTC()
}

// Activate resumes a paused schedule.
func (r *RecurringTransaction) Activate(now time.Time) {
	r.IsActive = true
	r.UpdatedAt = now.UTC()
}

// Deactivate pauses the schedule; the due-sweep skips it but it remains
// queryable.
func (r *RecurringTransaction) Deactivate(now time.Time) {
	r.IsActive = false
	r.UpdatedAt = now.UTC()
}

// MarkPaid records the current period as settled without advancing the
// schedule or creating a transaction. Calling it twice in a period is a
// no-op beyond refreshing the paid date.
func (r *RecurringTransaction) MarkPaid(now time.Time) {
	paidAt := now.UTC()
	r.LastPaidDate = &paidAt
	r.UpdatedAt = paidAt
}

// Update mutates the only fields that may change after creation: amount,
// description, and end date. Nil arguments leave the field untouched.
func (r *RecurringTransaction) Update(amount *decimal.Decimal, description *string, endDate *time.Time, now time.Time) error {
	if amount != nil {
		if amount.Sign() <= 0 {
			return fmt.Errorf("recurring transaction: amount must be positive, got %s", amount)
		}
		r.Amount = *amount
	}
	if description != nil {
		r.Description = *description
	}
	if endDate != nil {
		if endDate.Before(r.StartDate) {
			return fmt.Errorf("recurring transaction: end date %s precedes start date %s",
				endDate.Format("2006-01-02"), r.StartDate.Format("2006-01-02"))
		}
		r.EndDate = endDate
	}
	r.UpdatedAt = now.UTC()
	return nil
}

// Expired reports whether the schedule's end date has passed relative to its
// next occurrence. An expired schedule produces no further occurrences.
func (r *RecurringTransaction) Expired() bool {
	return r.EndDate != nil && r.NextExecutionDate.After(*r.EndDate)
}

// ShouldExecute reports whether the due-sweep must materialize this schedule
// now. Comparison is date-only so an occurrence scheduled for any time today
// is already due.
func (r *RecurringTransaction) ShouldExecute(now time.Time) bool {
	if !r.IsActive || r.Expired() {
		return false
	}
	return !dateOf(r.NextExecutionDate).After(dateOf(now))
}

// IsDueWithinDays reports whether the next occurrence falls within the given
// number of days from now. Already-overdue schedules count as due.
func (r *RecurringTransaction) IsDueWithinDays(now time.Time, days int) bool {
	if !r.IsActive || r.Expired() {
		return false
	}
	horizon := dateOf(now).AddDate(0, 0, days)
	return !dateOf(r.NextExecutionDate).After(horizon)
}

// DaysUntilDue is the whole number of days from now until the next
// occurrence; negative when overdue.
func (r *RecurringTransaction) DaysUntilDue(now time.Time) int {
	return int(dateOf(r.NextExecutionDate).Sub(dateOf(now)).Hours() / 24)
}

// IsPaidThisPeriod reports whether the user settled the current cycle,
// manually or via materialization, since the period began.
func (r *RecurringTransaction) IsPaidThisPeriod() bool {
	if r.LastPaidDate == nil {
		return false
	}
	periodStart := period.Previous(r.Frequency, r.NextExecutionDate)
	return !r.LastPaidDate.Before(periodStart)
}

// PaymentStatus derives the settlement state of the current period.
func (r *RecurringTransaction) PaymentStatus(now time.Time) PaymentStatus {
	if r.IsPaidThisPeriod() {
		return PaymentPaid
	}
	if dateOf(now).After(dateOf(r.NextExecutionDate)) {
		return PaymentOverdue
	}
	return PaymentPending
}

func dateOf(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
