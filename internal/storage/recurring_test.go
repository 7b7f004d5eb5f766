package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
	"github.com/centavohq/centavo/internal/service"
)

func createTestRecurring(t *testing.T, store *SQLiteStorage, userID string, direction model.Direction, freq period.Frequency, start time.Time) *model.RecurringTransaction {
	t.Helper()
	recurring, err := model.NewRecurringTransaction(userID, decimal.NewFromInt(25), direction,
		"subscriptions", "Streaming", freq, start, nil, nil, nil, start)
	require.NoError(t, err)
	require.NoError(t, store.CreateRecurring(context.Background(), recurring))
	return recurring
}

func TestSQLiteStorage_Recurring_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dayOfMonth := 15
	recurring, err := model.NewRecurringTransaction(user.ID, decimal.NewFromInt(1200),
		model.DirectionExpense, "rent", "Apartment", period.FreqMonthly, start, &end,
		&dayOfMonth, nil, start)
	require.NoError(t, err)
	require.NoError(t, store.CreateRecurring(ctx, recurring))

	got, err := store.GetRecurring(ctx, recurring.ID)
	require.NoError(t, err)
	assert.Equal(t, recurring.ID, got.ID)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, period.FreqMonthly, got.Frequency)
	assert.Equal(t, recurring.NextExecutionDate, got.NextExecutionDate)
	require.NotNil(t, got.EndDate)
	assert.Equal(t, end, *got.EndDate)
	require.NotNil(t, got.DayOfMonth)
	assert.Equal(t, 15, *got.DayOfMonth)
	assert.Nil(t, got.DayOfWeek)
	assert.Nil(t, got.LastPaidDate)

	_, err = store.GetRecurring(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetRecurringByUser_Filters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	income := createTestRecurring(t, store, user.ID, model.DirectionIncome, period.FreqMonthly, start)
	expense := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly, start)
	paused := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqWeekly, start)
	paused.Deactivate(start)
	require.NoError(t, store.UpdateRecurring(ctx, paused))

	all, err := store.GetRecurringByUser(ctx, service.RecurringFilter{UserID: user.ID})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	expenseDir := model.DirectionExpense
	expenses, err := store.GetRecurringByUser(ctx, service.RecurringFilter{UserID: user.ID, Direction: &expenseDir})
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	for _, r := range expenses {
		assert.NotEqual(t, income.ID, r.ID)
	}

	active := true
	activeOnly, err := store.GetRecurringByUser(ctx, service.RecurringFilter{UserID: user.ID, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, activeOnly, 2)
	for _, r := range activeOnly {
		assert.NotEqual(t, paused.ID, r.ID)
	}

	incomeDir := model.DirectionIncome
	incomes, err := store.GetRecurringByUser(ctx, service.RecurringFilter{UserID: user.ID, Direction: &incomeDir})
	require.NoError(t, err)
	require.Len(t, incomes, 1)
	assert.Equal(t, expense.UserID, incomes[0].UserID)
}

func TestSQLiteStorage_GetDueRecurring(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)

	// Next execution dates: start + 1 month.
	overdue := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) // due May 1
	dueToday := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly,
		time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)) // due Jun 10
	future := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) // due Jul 1

	paused := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	paused.Deactivate(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.UpdateRecurring(ctx, paused))

	// Schedule whose end date passed before its next occurrence.
	endDate := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	expired, err := model.NewRecurringTransaction(user.ID, decimal.NewFromInt(5),
		model.DirectionExpense, "trial", "", period.FreqMonthly,
		time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), &endDate, nil, nil,
		time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, store.CreateRecurring(ctx, expired)) // next: May 20 > end May 15

	asOf := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	due, err := store.GetDueRecurring(ctx, asOf)
	require.NoError(t, err)

	ids := make([]string, len(due))
	for i, r := range due {
		ids[i] = r.ID
	}
	assert.ElementsMatch(t, []string{overdue.ID, dueToday.ID}, ids)
	_ = future

	// Ordered by next execution date ascending.
	require.Len(t, due, 2)
	assert.Equal(t, overdue.ID, due[0].ID)
}

func TestSQLiteStorage_UpdateRecurring_PersistsTransitions(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	recurring := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly, start)
	originalNext := recurring.NextExecutionDate

	recurring.MarkPaid(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	recurring.Advance(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.UpdateRecurring(ctx, recurring))

	got, err := store.GetRecurring(ctx, recurring.ID)
	require.NoError(t, err)
	assert.True(t, got.NextExecutionDate.After(originalNext))
	require.NotNil(t, got.LastPaidDate)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), *got.LastPaidDate)

	missing := *recurring
	missing.ID = "missing"
	assert.ErrorIs(t, store.UpdateRecurring(ctx, &missing), common.ErrNotFound)
}

func TestSQLiteStorage_DeleteRecurring(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	recurring := createTestRecurring(t, store, user.ID, model.DirectionExpense, period.FreqMonthly, start)
	require.NoError(t, store.DeleteRecurring(ctx, recurring.ID))
	_, err := store.GetRecurring(ctx, recurring.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRecurring(ctx, recurring.ID), common.ErrNotFound)
}
