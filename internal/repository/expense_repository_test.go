package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

func setupExpenseTest(t *testing.T) (*ExpenseRepository, *models.User, *models.User, context.Context) {
	t.Helper()

	tx := database.TestTx(t)
	users := NewUserRepository(tx)
	ctx := context.Background()

	owner := newUser("dave", "dave@example.com")
	require.NoError(t, users.Create(ctx, owner))
	other := newUser("eve", "eve@example.com")
	require.NoError(t, users.Create(ctx, other))

	return NewExpenseRepository(tx), owner, other, ctx
}

func TestExpenseRepository_Create(t *testing.T) {
	repo, owner, _, ctx := setupExpenseTest(t)

	expense := &models.Expense{
		UserID:   owner.ID,
		Title:    "Coffee",
		Amount:   decimal.NewFromFloat(4.5),
		Category: "Food",
		SpentAt:  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
	err := repo.Create(ctx, expense)
	require.NoError(t, err)
	require.NotZero(t, expense.ID)
	require.False(t, expense.CreatedAt.IsZero())
}

func TestExpenseRepository_ListByUser(t *testing.T) {
	repo, owner, other, ctx := setupExpenseTest(t)

	dates := []time.Time{
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		require.NoError(t, repo.Create(ctx, &models.Expense{
			UserID:  owner.ID,
			Title:   "Expense",
			Amount:  decimal.NewFromInt(int64(i + 1)),
			SpentAt: d,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Expense{
		UserID:  other.ID,
		Title:   "Not mine",
		Amount:  decimal.NewFromInt(99),
		SpentAt: dates[0],
	}))

	expenses, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 3)

	// Newest first, and only the owner's rows.
	require.Equal(t, "2024-03-05", expenses[0].SpentAt.UTC().Format("2006-01-02"))
	require.Equal(t, "2024-02-20", expenses[1].SpentAt.UTC().Format("2006-01-02"))
	require.Equal(t, "2024-01-10", expenses[2].SpentAt.UTC().Format("2006-01-02"))
	for _, exp := range expenses {
		require.Equal(t, owner.ID, exp.UserID)
	}
}

func TestExpenseRepository_OwnershipScoping(t *testing.T) {
	repo, owner, other, ctx := setupExpenseTest(t)

	expense := &models.Expense{
		UserID:   owner.ID,
		Title:    "Lunch",
		Amount:   decimal.NewFromFloat(12.5),
		Category: "Food",
		SpentAt:  time.Now(),
	}
	require.NoError(t, repo.Create(ctx, expense))

	t.Run("get by foreign user is not found", func(t *testing.T) {
		_, err := repo.GetByIDAndUser(ctx, expense.ID, other.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update by foreign user is a no-op", func(t *testing.T) {
		err := repo.Update(ctx, &models.Expense{
			ID:      expense.ID,
			UserID:  other.ID,
			Title:   "Hijacked",
			Amount:  decimal.NewFromInt(0),
			SpentAt: time.Now(),
		})
		require.NoError(t, err)

		got, err := repo.GetByIDAndUser(ctx, expense.ID, owner.ID)
		require.NoError(t, err)
		require.Equal(t, "Lunch", got.Title)
		require.True(t, got.Amount.Equal(decimal.NewFromFloat(12.5)))
	})

	t.Run("delete by foreign user is a no-op", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, expense.ID, other.ID))

		_, err := repo.GetByIDAndUser(ctx, expense.ID, owner.ID)
		require.NoError(t, err)
	})

	t.Run("owner can update and delete", func(t *testing.T) {
		expense.Title = "Brunch"
		require.NoError(t, repo.Update(ctx, expense))

		got, err := repo.GetByIDAndUser(ctx, expense.ID, owner.ID)
		require.NoError(t, err)
		require.Equal(t, "Brunch", got.Title)

		require.NoError(t, repo.Delete(ctx, expense.ID, owner.ID))
		_, err = repo.GetByIDAndUser(ctx, expense.ID, owner.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}
