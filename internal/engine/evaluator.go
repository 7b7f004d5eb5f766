// Package engine implements the budget rule engine: spend validation against
// balance and active financial rules, and budget progress reporting.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
	"github.com/centavohq/centavo/internal/service"
)

// Verdict is the approve/reject decision for a proposed spend, with a
// human-readable justification suitable for direct display.
type Verdict struct {
	Verdict         string          `json:"verdict"`
	Reason          string          `json:"reason"`
	RemainingBudget decimal.Decimal `json:"remainingBudget"`
	IsApproved      bool            `json:"isApproved"`
}

// ValidateRequest is a proposed spend to check against the user's balance
// and active rules.
type ValidateRequest struct {
	UserID      string
	Category    string
	Description string
	Amount      decimal.Decimal
}

// Evaluator decides whether proposed spends are allowed. It only reads
// stored state; a verdict never writes anything.
type Evaluator struct {
	storage service.Storage
	clock   common.Clock
}

// NewEvaluator creates a rule engine backed by the given storage.
func NewEvaluator(storage service.Storage, clock common.Clock) *Evaluator {
	return &Evaluator{
		storage: storage,
		clock:   clock,
	}
}

// ValidateSpending checks a proposed spend in order: the user must exist,
// the balance must cover the amount, and no active applicable rule may have
// its period limit exceeded. The first failing check wins.
func (e *Evaluator) ValidateSpending(ctx context.Context, req ValidateRequest) (*Verdict, error) {
	if req.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", common.ErrInvalidInput, req.Amount)
	}

	user, err := e.storage.GetUser(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return reject("User not found", decimal.Zero), nil
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	if user.CurrentBalance.LessThan(req.Amount) {
		return reject(
			fmt.Sprintf("Insufficient balance. Available: $%s, Required: $%s",
				user.CurrentBalance, req.Amount),
			user.CurrentBalance), nil
	}

	rules, err := e.storage.GetActiveRulesByUser(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	for i := range rules {
		rule := &rules[i]
		if !rule.AppliesTo(req.Category) {
			continue
		}

		verdict, err := e.checkRule(ctx, rule, req.Amount)
		if err != nil {
			return nil, err
		}
		if verdict != nil {
			slog.Info("Spending rejected by rule",
				"user_id", req.UserID,
				"rule_id", rule.ID,
				"category", rule.CategoryLabel(),
				"period", rule.Period)
			return verdict, nil
		}
	}

	return &Verdict{
		IsApproved:      true,
		Verdict:         "Approved",
		Reason:          "Spending allowed",
		RemainingBudget: user.CurrentBalance.Sub(req.Amount),
	}, nil
}

// checkRule returns a rejection verdict when the rule's period limit would
// be exceeded, nil when the spend fits.
func (e *Evaluator) checkRule(ctx context.Context, rule *model.FinancialRule, amount decimal.Decimal) (*Verdict, error) {
	start, end := period.Window(rule.Period, e.clock.Now())

	spent, err := e.spentInWindow(ctx, rule.UserID, rule.Category, start, end)
	if err != nil {
		return nil, err
	}

	if spent.Add(amount).GreaterThan(rule.AmountLimit) {
		remaining := rule.AmountLimit.Sub(spent)
		return reject(
			fmt.Sprintf("Exceeds %s limit for %s: $%s. Spent: $%s, Remaining: $%s",
				rule.Period, rule.CategoryLabel(), rule.AmountLimit, spent, remaining),
			remaining), nil
	}

	return nil, nil
}

// spentInWindow sums expense amounts for the user inside [start, end),
// narrowed to a category when one is given.
func (e *Evaluator) spentInWindow(ctx context.Context, userID, category string, start, end time.Time) (decimal.Decimal, error) {
	transactions, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
		UserID:   userID,
		Start:    &start,
		End:      &end,
		Category: category,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query period transactions: %w", err)
	}

	spent := decimal.Zero
	for _, txn := range transactions {
		if txn.Direction == model.DirectionExpense {
			spent = spent.Add(txn.Amount)
		}
	}
	return spent, nil
}

func reject(reason string, remaining decimal.Decimal) *Verdict {
	return &Verdict{
		IsApproved:      false,
		Verdict:         "Rejected",
		Reason:          reason,
		RemainingBudget: remaining,
	}
}
