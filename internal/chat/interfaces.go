package chat

import (
	"context"

	"gitlab.com/kyawswar/ledger-chat/internal/logger"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// MessageStore is the persistence seam for the hub. Implemented by
// repository.MessageRepository; tests use an in-memory store.
type MessageStore interface {
	History(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	AddReaction(ctx context.Context, messageID int64, emoji, username string) ([]models.Reaction, error)
	RemoveReaction(ctx context.Context, messageID int64, emoji, username string) ([]models.Reaction, error)
}

// IdentityResolver decides which username an operation acts as, given the
// username claimed in the payload and the one bound to the connection at
// join time.
type IdentityResolver interface {
	Resolve(claimed, bound string) string
}

// ClaimedIdentity trusts the payload. This matches the pseudonymous
// behavior of the chat protocol: author identity is self-reported, not
// verified against the session.
type ClaimedIdentity struct{}

// Resolve returns the claimed username.
func (ClaimedIdentity) Resolve(claimed, _ string) string { return claimed }

// SessionIdentity pins every operation to the username bound to the
// connection, ignoring the payload claim.
type SessionIdentity struct{}

// Resolve returns the bound username.
func (SessionIdentity) Resolve(_, bound string) string { return bound }

// ErrorReporter receives storage and protocol failures from the hub.
// Realtime signals never surface errors to clients; they go here instead.
type ErrorReporter interface {
	Report(event string, err error)
}

// LogReporter reports hub errors to the application log.
type LogReporter struct{}

// Report logs the failed event.
func (LogReporter) Report(event string, err error) {
	logger.Log.Error().Err(err).Str("event", event).Msg("chat event failed")
}
