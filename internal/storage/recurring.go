package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/model"
	"github.com/centavohq/centavo/internal/period"
	"github.com/centavohq/centavo/internal/service"
)

const recurringColumns = `id, user_id, amount, direction, category, description, frequency,
	start_date, end_date, day_of_month, day_of_week, next_execution_date,
	is_active, last_paid_date, created_at, updated_at`

// CreateRecurring inserts a recurring schedule.
func (s *SQLiteStorage) CreateRecurring(ctx context.Context, recurring *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(recurring); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (`+recurringColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, recurring.ID, recurring.UserID, recurring.Amount.String(), string(recurring.Direction),
		recurring.Category, recurring.Description, string(recurring.Frequency),
		recurring.StartDate, nullTime(recurring.EndDate), nullInt(recurring.DayOfMonth),
		nullInt(recurring.DayOfWeek), recurring.NextExecutionDate, recurring.IsActive,
		nullTime(recurring.LastPaidDate), recurring.CreatedAt, recurring.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert recurring transaction: %w", err)
	}
	return nil
}

// GetRecurring fetches a schedule by id.
func (s *SQLiteStorage) GetRecurring(ctx context.Context, id string) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?
	`, id)

	recurring, err := scanRecurring(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recurring transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return recurring, nil
}

// GetRecurringByUser returns a user's schedules, optionally narrowed by
// direction and active state, ordered by next execution date.
func (s *SQLiteStorage) GetRecurringByUser(ctx context.Context, filter service.RecurringFilter) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.UserID, "filter.UserID"); err != nil {
		return nil, err
	}

	var (
		conditions = []string{"user_id = ?"}
		args       = []any{filter.UserID}
	)
	if filter.Direction != nil {
		conditions = append(conditions, "direction = ?")
		args = append(args, string(*filter.Direction))
	}
	if filter.IsActive != nil {
		conditions = append(conditions, "is_active = ?")
		args = append(args, *filter.IsActive)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY next_execution_date
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecurring(rows)
}

// GetDueRecurring returns every active schedule whose next execution date is
// on or before the given day and whose end date has not passed.
func (s *SQLiteStorage) GetDueRecurring(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	// Date-only comparison: anything scheduled before tomorrow is due.
	year, month, day := asOf.UTC().Date()
	cutoff := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recurringColumns+` FROM recurring_transactions
		WHERE is_active = 1
		  AND next_execution_date < ?
		  AND (end_date IS NULL OR next_execution_date <= end_date)
		ORDER BY next_execution_date
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query due recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecurring(rows)
}

// UpdateRecurring persists schedule state changes.
func (s *SQLiteStorage) UpdateRecurring(ctx context.Context, recurring *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(recurring); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET amount = ?, description = ?, end_date = ?, next_execution_date = ?,
		    is_active = ?, last_paid_date = ?, updated_at = ?
		WHERE id = ?
	`, recurring.Amount.String(), recurring.Description, nullTime(recurring.EndDate),
		recurring.NextExecutionDate, recurring.IsActive, nullTime(recurring.LastPaidDate),
		recurring.UpdatedAt, recurring.ID)
	if err != nil {
		return fmt.Errorf("failed to update recurring transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %s: %w", recurring.ID, common.ErrNotFound)
	}
	return nil
}

// DeleteRecurring removes a schedule.
func (s *SQLiteStorage) DeleteRecurring(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recurring transaction %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func collectRecurring(rows *sql.Rows) ([]model.RecurringTransaction, error) {
	var schedules []model.RecurringTransaction
	for rows.Next() {
		recurring, err := scanRecurring(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *recurring)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring transactions: %w", err)
	}
	return schedules, nil
}

func scanRecurring(row rowScanner) (*model.RecurringTransaction, error) {
	var (
		recurring   model.RecurringTransaction
		amount      string
		direction   string
		frequency   string
		description sql.NullString
		endDate     sql.NullTime
		lastPaid    sql.NullTime
		dayOfMonth  sql.NullInt64
		dayOfWeek   sql.NullInt64
	)
	err := row.Scan(&recurring.ID, &recurring.UserID, &amount, &direction, &recurring.Category,
		&description, &frequency, &recurring.StartDate, &endDate, &dayOfMonth, &dayOfWeek,
		&recurring.NextExecutionDate, &recurring.IsActive, &lastPaid,
		&recurring.CreatedAt, &recurring.UpdatedAt)
	if err != nil {
		return nil, err
	}

	recurring.Amount, err = parseDecimal(amount, "amount")
	if err != nil {
		return nil, err
	}
	recurring.Direction = model.Direction(direction)
	recurring.Frequency = period.Frequency(frequency)
	recurring.Description = description.String
	recurring.EndDate = timePtr(endDate)
	recurring.LastPaidDate = timePtr(lastPaid)
	recurring.DayOfMonth = intPtr(dayOfMonth)
	recurring.DayOfWeek = intPtr(dayOfWeek)
	recurring.StartDate = recurring.StartDate.UTC()
	recurring.NextExecutionDate = recurring.NextExecutionDate.UTC()
	recurring.CreatedAt = recurring.CreatedAt.UTC()
	recurring.UpdatedAt = recurring.UpdatedAt.UTC()

	return &recurring, nil
}
