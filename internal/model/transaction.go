// Package model defines the domain entities for the wallet: users, ledger
// transactions, budget rules, and recurring schedules. Entities are built
// through constructors that validate their invariants and are mutated only
// through named transition methods.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction indicates whether money flows into or out of the wallet.
type Direction string

// Transaction directions.
const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// ParseDirection parses a transaction direction case-insensitively.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown transaction direction %q", s)
	}
	return d, nil
}

// Source records which channel produced a transaction.
type Source string

// Transaction sources.
const (
	SourceManual    Source = "manual"
	SourceTelegram  Source = "telegram"
	SourceWhatsApp  Source = "whatsapp"
	SourceAutomatic Source = "automatic"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceTelegram, SourceWhatsApp, SourceAutomatic:
		return true
	}
	return false
}

// ParseSource parses a transaction source case-insensitively.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("unknown transaction source %q", s)
	}
	return src, nil
}

// Transaction is a single append-only ledger entry. Once recorded it is
// never mutated; deleting one reverses its balance effect.
type Transaction struct {
	OccurredAt  time.Time
	CreatedAt   time.Time
	ID          string
	UserID      string
	Category    string
	Description string
	Direction   Direction
	Source      Source
	Amount      decimal.Decimal
}

// NewTransaction creates a validated ledger entry.
func NewTransaction(userID string, amount decimal.Decimal, direction Direction, category string, occurredAt time.Time, source Source, description string) (*Transaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("transaction: user id is required")
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("transaction: amount must be positive, got %s", amount)
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("transaction: unknown direction %q", direction)
	}
	if !source.Valid() {
		return nil, fmt.Errorf("transaction: unknown source %q", source)
	}
	if strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("transaction: category is required")
	}

	return &Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      amount,
		Direction:   direction,
		Category:    category,
		OccurredAt:  occurredAt.UTC(),
		Source:      source,
		Description: description,
		CreatedAt:   occurredAt.UTC(),
	}, nil
}

// BalanceDelta is the signed effect this transaction has on the owner's
// balance: positive for income, negative for expense.
func (t *Transaction) BalanceDelta() decimal.Decimal {
	if t.Direction == DirectionIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}
