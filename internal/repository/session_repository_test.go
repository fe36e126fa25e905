package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/kyawswar/ledger-chat/internal/database"
)

func TestSessionRepository(t *testing.T) {
	tx := database.TestTx(t)
	users := NewUserRepository(tx)
	sessions := NewSessionRepository(tx)
	ctx := context.Background()

	user := newUser("carol", "carol@example.com")
	require.NoError(t, users.Create(ctx, user))

	t.Run("create and get", func(t *testing.T) {
		session, err := sessions.Create(ctx, user.ID, user.Username, time.Hour)
		require.NoError(t, err)
		require.NotEmpty(t, session.Token)

		got, err := sessions.Get(ctx, session.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.UserID)
		require.Equal(t, "carol", got.Username)
	})

	t.Run("expired session is not found", func(t *testing.T) {
		session, err := sessions.Create(ctx, user.ID, user.Username, -time.Minute)
		require.NoError(t, err)

		_, err = sessions.Get(ctx, session.Token)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		session, err := sessions.Create(ctx, user.ID, user.Username, time.Hour)
		require.NoError(t, err)

		require.NoError(t, sessions.Delete(ctx, session.Token))
		require.NoError(t, sessions.Delete(ctx, session.Token))

		_, err = sessions.Get(ctx, session.Token)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		_, err := sessions.Create(ctx, user.ID, user.Username, -time.Minute)
		require.NoError(t, err)

		deleted, err := sessions.DeleteExpired(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, deleted, 1)
	})
}
