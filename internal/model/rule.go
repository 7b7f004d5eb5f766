package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/period"
)

// RuleKind classifies what a financial rule is for.
type RuleKind string

// Rule kinds.
const (
	RuleSpendingLimit  RuleKind = "spending_limit"
	RuleSavingsGoal    RuleKind = "savings_goal"
	RuleCategoryBudget RuleKind = "category_budget"
)

// Valid reports whether k is a known rule kind.
func (k RuleKind) Valid() bool {
	switch k {
	case RuleSpendingLimit, RuleSavingsGoal, RuleCategoryBudget:
		return true
	}
	return false
}

// ParseRuleKind parses a rule kind name case-insensitively.
func ParseRuleKind(s string) (RuleKind, error) {
	k := RuleKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown rule kind %q", s)
	}
	return k, nil
}

// FinancialRule caps spending in a category (or globally, when Category is
// empty) over a recurring calendar period.
type FinancialRule struct {
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	UserID      string
	Category    string
	Kind        RuleKind
	Period      period.Kind
	AmountLimit decimal.Decimal
	IsActive    bool
}

// NewFinancialRule creates an active rule. An empty category makes the rule
// global: it is evaluated against every expense category.
func NewFinancialRule(userID string, kind RuleKind, category string, amountLimit decimal.Decimal, p period.Kind, now time.Time) (*FinancialRule, error) {
	if userID == "" {
		return nil, fmt.Errorf("financial rule: user id is required")
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("financial rule: unknown kind %q", kind)
	}
	if amountLimit.Sign() <= 0 {
		return nil, fmt.Errorf("financial rule: amount limit must be positive, got %s", amountLimit)
	}
	if !p.Valid() {
		return nil, fmt.Errorf("financial rule: unknown period %q", p)
	}

	return &FinancialRule{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        kind,
		Category:    strings.TrimSpace(category),
		AmountLimit: amountLimit,
		Period:      p,
		IsActive:    true,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// AppliesTo reports whether the rule constrains spending in the given
// category. Global rules apply to everything.
func (r *FinancialRule) AppliesTo(category string) bool {
	return r.Category == "" || r.Category == category
}

// CategoryLabel is the display name of the rule's category scope.
func (r *FinancialRule) CategoryLabel() string {
	if r.Category == "" {
		return "general"
	}
	return r.Category
}

// Deactivate soft-deletes the rule. There is no reactivation; a new rule is
// created instead.
func (r *FinancialRule) Deactivate(now time.Time) {
	r.IsActive = false
	r.UpdatedAt = now.UTC()
}
