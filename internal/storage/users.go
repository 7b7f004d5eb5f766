package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
)

// CreateUser inserts a new user row.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone_number, current_balance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PhoneNumber, user.CurrentBalance.String(), user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("user email %s: %w", user.Email, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	s.userCache.set(user)
	return nil
}

// GetUser fetches a user by id, serving hot users from the read cache.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	if user, ok := s.userCache.get(id); ok {
		return user, nil
	}

	user, err := s.getUserWhere(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}

	s.userCache.set(user)
	return user, nil
}

// GetUserByEmail fetches a user by email address.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(email, "email"); err != nil {
		return nil, err
	}

	return s.getUserWhere(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *SQLiteStorage) getUserWhere(ctx context.Context, where string, arg any) (*model.User, error) {
	var (
		user    model.User
		balance string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone_number, current_balance, created_at, updated_at
		FROM users WHERE `+where, arg,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PhoneNumber, &balance, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.CurrentBalance, err = parseDecimal(balance, "current_balance")
	if err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()

	return &user, nil
}

// applyBalanceDeltaTx shifts the user's running balance inside an open
// transaction. The read and write happen on the same connection, so the
// single-writer SQLite setup keeps this consistent.
func (s *SQLiteStorage) applyBalanceDeltaTx(ctx context.Context, tx *sql.Tx, userID string, delta decimal.Decimal, at time.Time) error {
	var balance string
	err := tx.QueryRowContext(ctx, `SELECT current_balance FROM users WHERE id = ?`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user: %w", common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	current, err := parseDecimal(balance, "current_balance")
	if err != nil {
		return err
	}

	updated := current.Add(delta)
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET current_balance = ?, updated_at = ? WHERE id = ?
	`, updated.String(), at, userID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	s.userCache.invalidate(userID)
	return nil
}
