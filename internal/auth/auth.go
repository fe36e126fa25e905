// Package auth implements registration, login and session management.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/kyawswar/ledger-chat/internal/models"
	"gitlab.com/kyawswar/ledger-chat/internal/repository"
)

// BcryptCost is the work factor for password hashing.
const BcryptCost = 10

var (
	// ErrMissingFields indicates a blank required registration field.
	ErrMissingFields = errors.New("all fields are required")

	// ErrInvalidCredentials is returned for any login failure. It never
	// distinguishes an unknown user from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// Service wires the credential store to session management.
type Service struct {
	users      *repository.UserRepository
	sessions   *repository.SessionRepository
	sessionTTL time.Duration
}

// NewService creates a new auth Service.
func NewService(users *repository.UserRepository, sessions *repository.SessionRepository, sessionTTL time.Duration) *Service {
	return &Service{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

// Register creates a new account. Inputs are trimmed; all three fields
// are required. The password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the identifier (username or email) and password, and on
// success creates a server-side session.
func (s *Service) Login(ctx context.Context, identifier, password string) (*models.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID, user.Username, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Logout destroys the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// SessionByToken resolves a live session, or repository.ErrNotFound.
func (s *Service) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	return s.sessions.Get(ctx, token)
}
