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
)

func createTestRule(t *testing.T, store *SQLiteStorage, userID, category string, limit int64, p period.Kind) *model.FinancialRule {
	t.Helper()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rule, err := model.NewFinancialRule(userID, model.RuleCategoryBudget, category,
		decimal.NewFromInt(limit), p, now)
	require.NoError(t, err)
	require.NoError(t, store.CreateRule(context.Background(), rule))
	return rule
}

func TestSQLiteStorage_Rules_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)

	rule := createTestRule(t, store, user.ID, "food", 50, period.Monthly)

	got, err := store.GetRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, got.ID)
	assert.Equal(t, "food", got.Category)
	assert.Equal(t, period.Monthly, got.Period)
	assert.True(t, got.AmountLimit.Equal(decimal.NewFromInt(50)))
	assert.True(t, got.IsActive)

	_, err = store.GetRule(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_GetActiveRulesByUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)

	first := createTestRule(t, store, user.ID, "food", 50, period.Monthly)
	second := createTestRule(t, store, user.ID, "", 200, period.Weekly)

	rules, err := store.GetActiveRulesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Deactivation hides a rule from the active listing but not GetRule.
	second.Deactivate(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, store.UpdateRule(ctx, second))

	rules, err = store.GetActiveRulesByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, first.ID, rules[0].ID)

	got, err := store.GetRule(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestSQLiteStorage_DeleteRule(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, 100)
	rule := createTestRule(t, store, user.ID, "food", 50, period.Monthly)

	require.NoError(t, store.DeleteRule(ctx, rule.ID))
	_, err := store.GetRule(ctx, rule.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.DeleteRule(ctx, rule.ID), common.ErrNotFound)
}
