package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavohq/centavo/internal/period"
)

func TestNewFinancialRule(t *testing.T) {
	now := date(2025, 6, 1)

	rule, err := NewFinancialRule("user-1", RuleCategoryBudget, "food", decimal.NewFromInt(50), period.Monthly, now)
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.NotEmpty(t, rule.ID)
	assert.Equal(t, "food", rule.Category)

	tests := []struct {
		name     string
		category string
		kind     RuleKind
		p        period.Kind
		limit    decimal.Decimal
	}{
		{"zero limit", "food", RuleSpendingLimit, period.Monthly, decimal.Zero},
		{"negative limit", "food", RuleSpendingLimit, period.Monthly, decimal.NewFromInt(-10)},
		{"unknown kind", "food", RuleKind("envelope"), period.Monthly, decimal.NewFromInt(10)},
		{"unknown period", "food", RuleSpendingLimit, period.Kind("quarterly"), decimal.NewFromInt(10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFinancialRule("user-1", tt.kind, tt.category, tt.limit, tt.p, now)
			assert.Error(t, err)
		})
	}
}

func TestFinancialRule_AppliesTo(t *testing.T) {
	now := date(2025, 6, 1)

	scoped, err := NewFinancialRule("u", RuleCategoryBudget, "food", decimal.NewFromInt(50), period.Monthly, now)
	require.NoError(t, err)
	assert.True(t, scoped.AppliesTo("food"))
	assert.False(t, scoped.AppliesTo("transport"))
	assert.Equal(t, "food", scoped.CategoryLabel())

	global, err := NewFinancialRule("u", RuleSpendingLimit, "", decimal.NewFromInt(200), period.Weekly, now)
	require.NoError(t, err)
	assert.True(t, global.AppliesTo("food"))
	assert.True(t, global.AppliesTo("transport"))
	assert.True(t, global.AppliesTo("anything at all"))
	assert.Equal(t, "general", global.CategoryLabel())
}

func TestFinancialRule_Deactivate(t *testing.T) {
	now := date(2025, 6, 1)
	rule, err := NewFinancialRule("u", RuleSavingsGoal, "", decimal.NewFromInt(100), period.Yearly, now)
	require.NoError(t, err)

	later := date(2025, 6, 2)
	rule.Deactivate(later)
	assert.False(t, rule.IsActive)
	assert.Equal(t, later, rule.UpdatedAt)
}
