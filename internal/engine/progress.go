package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
)

// Budget progress statuses.
const (
	StatusOnTrack    = "On Track"
	StatusWarning    = "Warning"
	StatusOverBudget = "Over Budget"
)

// warningThreshold is the percent-used level at which a budget flips from
// on-track to warning.
const warningThreshold = 80.0

// RuleProgress describes how much of a rule's budget is consumed in its
// current period.
type RuleProgress struct {
	PeriodStartDate time.Time       `json:"periodStartDate"`
	PeriodEndDate   time.Time       `json:"periodEndDate"`
	RuleID          string          `json:"ruleId"`
	Category        string          `json:"category"`
	Period          string          `json:"period"`
	Status          string          `json:"status"`
	Limit           decimal.Decimal `json:"limit"`
	Spent           decimal.Decimal `json:"spent"`
	Remaining       decimal.Decimal `json:"remaining"`
	PercentUsed     float64         `json:"percentUsed"`
	IsOverBudget    bool            `json:"isOverBudget"`
}

// RuleProgress reports spend against a single rule's budget for the period
// containing now.
func (e *Evaluator) RuleProgress(ctx context.Context, ruleID string) (*RuleProgress, error) {
	rule, err := e.storage.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	return e.progressFor(ctx, rule)
}

// UserProgress reports budget progress for every active rule of a user.
func (e *Evaluator) UserProgress(ctx context.Context, userID string) ([]RuleProgress, error) {
	rules, err := e.storage.GetActiveRulesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	progress := make([]RuleProgress, 0, len(rules))
	for i := range rules {
		p, err := e.progressFor(ctx, &rules[i])
		if err != nil {
			return nil, err
		}
		progress = append(progress, *p)
	}
	return progress, nil
}

func (e *Evaluator) progressFor(ctx context.Context, rule *model.FinancialRule) (*RuleProgress, error) {
	start, end := period.Window(rule.Period, e.clock.Now())

	spent, err := e.spentInWindow(ctx, rule.UserID, rule.Category, start, end)
	if err != nil {
		return nil, err
	}

	remaining := rule.AmountLimit.Sub(spent)
	if remaining.Sign() < 0 {
		remaining = decimal.Zero
	}

	percentUsed := 0.0
	if rule.AmountLimit.Sign() > 0 {
		percentUsed = spent.Div(rule.AmountLimit).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}

	isOver := spent.GreaterThan(rule.AmountLimit)
	status := StatusOnTrack
	switch {
	case isOver:
		status = StatusOverBudget
	case percentUsed >= warningThreshold:
		status = StatusWarning
	}

	return &RuleProgress{
		RuleID:          rule.ID,
		Category:        rule.CategoryLabel(),
		Period:          string(rule.Period),
		Limit:           rule.AmountLimit,
		Spent:           spent,
		Remaining:       remaining,
		PercentUsed:     percentUsed,
		PeriodStartDate: start,
		PeriodEndDate:   end,
		IsOverBudget:    isOver,
		Status:          status,
	}, nil
}
