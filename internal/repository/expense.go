package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spendtrack/spendtrack-go/internal/model"
)

var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseRepository handles expense persistence. Every query is filtered by
// the owning user's ID.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts an expense and sets its generated ID and CreatedAt.
func (r *ExpenseRepository) Create(ctx context.Context, e *model.Expense) error {
	id, err := NewID()
	if err != nil {
		return err
	}
	createdAt := time.Now().UTC().Truncate(time.Microsecond)

	query := `INSERT INTO expenses (id, user_id, description, amount, category, expense_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		id, e.UserID, e.Description, e.Amount.String(), string(e.Category), e.Date.String(), createdAt,
	)
	if err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	e.ID = id
	e.CreatedAt = createdAt
	return nil
}

// ListByUser retrieves a user's expenses, newest date first. Expenses on the
// same date are ordered newest insertion first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID string) ([]model.Expense, error) {
	query := `SELECT id, user_id, description, amount, category, expense_date, created_at
		FROM expenses WHERE user_id = ? ORDER BY expense_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		var (
			e        model.Expense
			category string
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Description, &e.Amount.Decimal, &category, &e.Date, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		e.Category = model.Category(category)
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}

// Delete removes one expense owned by userID. An ID that does not exist and
// an ID owned by someone else both yield ErrExpenseNotFound.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM expenses WHERE user_id = ? AND id = ?`

	result, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// DeleteMany removes those of ids that belong to userID and returns how many
// rows went away. IDs owned by other users are ignored.
func (r *ExpenseRepository) DeleteMany(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `DELETE FROM expenses WHERE user_id = ? AND id IN (` + placeholders + `)`

	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting expenses: %w", err)
	}

	return result.RowsAffected()
}
