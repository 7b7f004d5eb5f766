package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/service"
)

// RecordTransaction inserts a ledger entry and applies its balance delta to
// the owning user atomically.
func (s *SQLiteStorage) RecordTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, direction, category, occurred_at, source, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.UserID, txn.Amount.String(), string(txn.Direction), txn.Category,
		txn.OccurredAt, string(txn.Source), txn.Description, txn.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	if err := s.applyBalanceDeltaTx(ctx, tx, txn.UserID, txn.BalanceDelta(), txn.OccurredAt); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteTransaction removes a ledger entry and reverses its balance effect.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}

	if err := s.applyBalanceDeltaTx(ctx, tx, txn.UserID, txn.BalanceDelta().Neg(), txn.OccurredAt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetTransaction fetches a single ledger entry by id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, amount, direction, category, occurred_at, source, description, created_at
		FROM transactions WHERE id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactions returns ledger entries matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.UserID, "filter.UserID"); err != nil {
		return nil, err
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, fmt.Errorf("%w: end precedes start", ErrInvalidFilter)
	}

	var (
		conditions = []string{"user_id = ?"}
		args       = []any{filter.UserID}
	)
	if filter.Start != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, filter.Start.UTC())
	}
	if filter.End != nil {
		conditions = append(conditions, "occurred_at < ?")
		args = append(args, filter.End.UTC())
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}

	query := `
		SELECT id, user_id, amount, direction, category, occurred_at, source, description, created_at
		FROM transactions WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY occurred_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn         model.Transaction
		amount      string
		direction   string
		source      string
		description sql.NullString
	)
	err := row.Scan(&txn.ID, &txn.UserID, &amount, &direction, &txn.Category,
		&txn.OccurredAt, &source, &description, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}

	txn.Amount, err = parseDecimal(amount, "amount")
	if err != nil {
		return nil, err
	}
	txn.Direction = model.Direction(direction)
	txn.Source = model.Source(source)
	txn.Description = description.String
	txn.OccurredAt = txn.OccurredAt.UTC()
	txn.CreatedAt = txn.CreatedAt.UTC()

	return &txn, nil
}
