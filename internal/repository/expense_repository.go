package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// ExpenseRepository handles expense database operations. Every read and
// write is scoped by the owning user id; an expense id that belongs to
// another user behaves as if it does not exist.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, title, amount, category, spent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, expense.UserID, expense.Title, expense.Amount, expense.Category, expense.SpentAt,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// ListByUser retrieves all expenses owned by the user, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, amount, category, spent_at, created_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY spent_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Title, &exp.Amount,
			&exp.Category, &exp.SpentAt, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read expenses: %w", err)
	}
	return expenses, nil
}

// GetByIDAndUser retrieves one expense, scoped to its owner.
func (r *ExpenseRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Expense, error) {
	var exp models.Expense
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, title, amount, category, spent_at, created_at
		FROM expenses WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&exp.ID, &exp.UserID, &exp.Title, &exp.Amount,
		&exp.Category, &exp.SpentAt, &exp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return &exp, nil
}

// Update overwrites an expense's fields, scoped to its owner. Updating an
// expense that does not exist (or belongs to someone else) is a no-op.
func (r *ExpenseRepository) Update(ctx context.Context, expense *models.Expense) error {
	_, err := r.db.Exec(ctx, `
		UPDATE expenses SET
			title = $3,
			amount = $4,
			category = $5,
			spent_at = $6
		WHERE id = $1 AND user_id = $2
	`, expense.ID, expense.UserID, expense.Title, expense.Amount,
		expense.Category, expense.SpentAt)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return nil
}

// Delete removes an expense, scoped to its owner. Same no-op semantics
// as Update.
func (r *ExpenseRepository) Delete(ctx context.Context, id, userID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
