package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
)

// CreateRule inserts a financial rule.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.FinancialRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO financial_rules (id, user_id, kind, category, amount_limit, period, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rule.ID, rule.UserID, string(rule.Kind), rule.Category, rule.AmountLimit.String(),
		string(rule.Period), rule.IsActive, rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert rule: %w", err)
	}
	return nil
}

// GetRule fetches a rule by id.
func (s *SQLiteStorage) GetRule(ctx context.Context, id string) (*model.FinancialRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, kind, category, amount_limit, period, is_active, created_at, updated_at
		FROM financial_rules WHERE id = ?
	`, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// GetActiveRulesByUser returns the user's active rules in creation order.
func (s *SQLiteStorage) GetActiveRulesByUser(ctx context.Context, userID string) ([]model.FinancialRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, kind, category, amount_limit, period, is_active, created_at, updated_at
		FROM financial_rules
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.FinancialRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

// UpdateRule persists rule state changes (deactivation).
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.FinancialRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE financial_rules
		SET kind = ?, category = ?, amount_limit = ?, period = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`, string(rule.Kind), rule.Category, rule.AmountLimit.String(), string(rule.Period),
		rule.IsActive, rule.UpdatedAt, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteRule hard-deletes a rule.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM financial_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanRule(row rowScanner) (*model.FinancialRule, error) {
	var (
		rule  model.FinancialRule
		kind  string
		p     string
		limit string
	)
	err := row.Scan(&rule.ID, &rule.UserID, &kind, &rule.Category, &limit, &p,
		&rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rule.AmountLimit, err = parseDecimal(limit, "amount_limit")
	if err != nil {
		return nil, err
	}
	rule.Kind = model.RuleKind(kind)
	rule.Period = period.Kind(p)
	rule.CreatedAt = rule.CreatedAt.UTC()
	rule.UpdatedAt = rule.UpdatedAt.UTC()

	return &rule, nil
}
