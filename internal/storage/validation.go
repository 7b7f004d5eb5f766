package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/centavohq/centavo/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrInvalidEntity  = errors.New("invalid entity")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidAmounts = errors.New("amount must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateUser(user *model.User) error {
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if user.ID == "" || user.Email == "" {
		return fmt.Errorf("%w: user requires id and email", ErrInvalidEntity)
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" || txn.UserID == "" {
		return fmt.Errorf("%w: transaction requires id and user id", ErrInvalidEntity)
	}
	if txn.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidAmounts, txn.Amount)
	}
	if !txn.Direction.Valid() {
		return fmt.Errorf("%w: direction %q", ErrInvalidEntity, txn.Direction)
	}
	return nil
}

func validateRule(rule *model.FinancialRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if rule.ID == "" || rule.UserID == "" {
		return fmt.Errorf("%w: rule requires id and user id", ErrInvalidEntity)
	}
	if rule.AmountLimit.Sign() <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidAmounts, rule.AmountLimit)
	}
	if !rule.Period.Valid() {
		return fmt.Errorf("%w: period %q", ErrInvalidEntity, rule.Period)
	}
	return nil
}

func validateRecurring(recurring *model.RecurringTransaction) error {
	if recurring == nil {
		return fmt.Errorf("%w: recurring transaction", ErrNilParameter)
	}
	if recurring.ID == "" || recurring.UserID == "" {
		return fmt.Errorf("%w: recurring transaction requires id and user id", ErrInvalidEntity)
	}
	if recurring.Amount.Sign() <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidAmounts, recurring.Amount)
	}
	if !recurring.Frequency.Valid() {
		return fmt.Errorf("%w: frequency %q", ErrInvalidEntity, recurring.Frequency)
	}
	return nil
}
