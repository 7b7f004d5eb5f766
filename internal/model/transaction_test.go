package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	occurredAt := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		userID    string
		amount    decimal.Decimal
		direction Direction
		category  string
		source    Source
		wantErr   string
	}{
		{
			name:   "valid expense",
			userID: "u1", amount: decimal.NewFromInt(25),
			direction: DirectionExpense, category: "food", source: SourceManual,
		},
		{
			name:   "valid income",
			userID: "u1", amount: decimal.NewFromFloat(1250.50),
			direction: DirectionIncome, category: "salary", source: SourceAutomatic,
		},
		{
			name:   "missing user",
			amount: decimal.NewFromInt(25), direction: DirectionExpense,
			category: "food", source: SourceManual,
			wantErr: "user id is required",
		},
		{
			name:   "zero amount",
			userID: "u1", amount: decimal.Zero, direction: DirectionExpense,
			category: "food", source: SourceManual,
			wantErr: "amount must be positive",
		},
		{
			name:   "negative amount",
			userID: "u1", amount: decimal.NewFromInt(-5), direction: DirectionExpense,
			category: "food", source: SourceManual,
			wantErr: "amount must be positive",
		},
		{
			name:   "unknown direction",
			userID: "u1", amount: decimal.NewFromInt(5), direction: Direction("transfer"),
			category: "food", source: SourceManual,
			wantErr: "unknown direction",
		},
		{
			name:   "unknown source",
			userID: "u1", amount: decimal.NewFromInt(5), direction: DirectionExpense,
			category: "food", source: Source("carrier-pigeon"),
			wantErr: "unknown source",
		},
		{
			name:   "blank category",
			userID: "u1", amount: decimal.NewFromInt(5), direction: DirectionExpense,
			category: "   ", source: SourceManual,
			wantErr: "category is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, err := NewTransaction(tt.userID, tt.amount, tt.direction, tt.category,
				occurredAt, tt.source, "")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, txn.ID)
			assert.Equal(t, occurredAt, txn.OccurredAt)
		})
	}
}

func TestTransaction_BalanceDelta(t *testing.T) {
	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	income, err := NewTransaction("u1", decimal.NewFromInt(100), DirectionIncome, "salary", at, SourceManual, "")
	require.NoError(t, err)
	assert.True(t, income.BalanceDelta().Equal(decimal.NewFromInt(100)))

	expense, err := NewTransaction("u1", decimal.NewFromInt(40), DirectionExpense, "food", at, SourceManual, "")
	require.NoError(t, err)
	assert.True(t, expense.BalanceDelta().Equal(decimal.NewFromInt(-40)))
}

func TestParseDirectionAndSource(t *testing.T) {
	d, err := ParseDirection(" Expense ")
	require.NoError(t, err)
	assert.Equal(t, DirectionExpense, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)

	s, err := ParseSource("TELEGRAM")
	require.NoError(t, err)
	assert.Equal(t, SourceTelegram, s)

	_, err = ParseSource("fax")
	assert.Error(t, err)
}

func TestNewUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	user, err := NewUser("Maria", " Maria@Example.COM ", "+5215512345678", decimal.NewFromInt(500), now)
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email, "emails are normalized to lower case")
	assert.True(t, user.CurrentBalance.Equal(decimal.NewFromInt(500)))

	_, err = NewUser("", "a@b.c", "", decimal.Zero, now)
	assert.Error(t, err)

	_, err = NewUser("Maria", "  ", "", decimal.Zero, now)
	assert.Error(t, err)
}

func TestUser_ApplyBalanceDelta(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user, err := NewUser("Maria", "maria@example.com", "", decimal.NewFromInt(100), now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	user.ApplyBalanceDelta(decimal.NewFromInt(-30), later)
	assert.True(t, user.CurrentBalance.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, later, user.UpdatedAt)
}
