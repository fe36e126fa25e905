package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// SessionRepository handles server-side session storage.
type SessionRepository struct {
	db database.PGXDB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db database.PGXDB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session for the user and returns it.
func (r *SessionRepository) Create(ctx context.Context, userID int64, username string, ttl time.Duration) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(ttl),
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (token, user_id, username, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.Username, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Get retrieves a live session by token. Expired sessions are ErrNotFound.
func (r *SessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	err := r.db.QueryRow(ctx, `
		SELECT token, user_id, username, expires_at
		FROM sessions WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&session.Token, &session.UserID, &session.Username, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting an unknown token is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all expired sessions. Returns the number deleted.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return int(result.RowsAffected()), nil
}
