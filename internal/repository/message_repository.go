package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gitlab.com/kyawswar/ledger-chat/internal/database"
	"gitlab.com/kyawswar/ledger-chat/internal/models"
)

// MessageRepository handles chat message storage. It implements
// chat.MessageStore.
type MessageRepository struct {
	db database.PGXDB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db database.PGXDB) *MessageRepository {
	return &MessageRepository{db: db}
}

// History retrieves all messages oldest first, with reactions attached in
// insertion order.
func (r *MessageRepository) History(ctx context.Context) ([]models.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, text, reply_id, reply_username, reply_text,
		       edited, seen_by, created_at
		FROM messages
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	index := make(map[int64]int)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		index[msg.ID] = len(messages)
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	if len(messages) == 0 {
		return messages, nil
	}

	reactionRows, err := r.db.Query(ctx, `
		SELECT message_id, emoji, username
		FROM reactions
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions: %w", err)
	}
	defer reactionRows.Close()

	for reactionRows.Next() {
		var messageID int64
		var reaction models.Reaction
		if err := reactionRows.Scan(&messageID, &reaction.Emoji, &reaction.Username); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		if i, ok := index[messageID]; ok {
			messages[i].Reactions = append(messages[i].Reactions, reaction)
		}
	}
	if err := reactionRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reactions: %w", err)
	}

	return messages, nil
}

// Create stores a new message, including the optional reply snapshot.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	var replyID *int64
	var replyUsername, replyText *string
	if msg.Reply != nil {
		replyID = &msg.Reply.ID
		replyUsername = &msg.Reply.Username
		replyText = &msg.Reply.Text
	}
	if msg.SeenBy == nil {
		msg.SeenBy = []string{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO messages (username, text, reply_id, reply_username, reply_text, seen_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, msg.Username, msg.Text, replyID, replyUsername, replyText, msg.SeenBy,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetByID retrieves one message with its reactions.
func (r *MessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, text, reply_id, reply_username, reply_text,
		       edited, seen_by, created_at
		FROM messages WHERE id = $1
	`, id)
	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	reactions, err := r.listReactions(ctx, id)
	if err != nil {
		return nil, err
	}
	msg.Reactions = reactions
	return msg, nil
}

// UpdateText overwrites the message text and marks it edited.
func (r *MessageRepository) UpdateText(ctx context.Context, id int64, text string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages SET text = $2, edited = TRUE WHERE id = $1
	`, id, text)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

// Delete removes one message. Unknown ids are a no-op.
func (r *MessageRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// DeleteAll removes every message (reactions go with them via cascade).
func (r *MessageRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM messages`)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

// AddReaction records a (username, emoji) reaction on a message. The
// insert is conflict-free: a duplicate pair is absorbed by the unique
// index rather than checked first, so concurrent reactions cannot lose
// updates. Returns the full refreshed reaction list.
func (r *MessageRepository) AddReaction(ctx context.Context, messageID int64, emoji, username string) ([]models.Reaction, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO reactions (message_id, username, emoji)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id, username, emoji) DO NOTHING
	`, messageID, username, emoji)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}
	return r.listReactions(ctx, messageID)
}

// RemoveReaction deletes the matching (username, emoji) pair. Removing a
// reaction that is not there is a no-op, but the message itself must
// exist: a plain DELETE would match zero rows either way, so the
// existence check keeps this path reporting ErrNotFound like AddReaction
// does through its FK. Returns the full refreshed reaction list.
func (r *MessageRepository) RemoveReaction(ctx context.Context, messageID int64, emoji, username string) ([]models.Reaction, error) {
	var one int
	err := r.db.QueryRow(ctx, `SELECT 1 FROM messages WHERE id = $1`, messageID).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to check message: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		DELETE FROM reactions WHERE message_id = $1 AND username = $2 AND emoji = $3
	`, messageID, username, emoji)
	if err != nil {
		return nil, fmt.Errorf("failed to remove reaction: %w", err)
	}
	return r.listReactions(ctx, messageID)
}

func (r *MessageRepository) listReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT emoji, username FROM reactions
		WHERE message_id = $1
		ORDER BY id ASC
	`, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reactions: %w", err)
	}
	defer rows.Close()

	reactions := []models.Reaction{}
	for rows.Next() {
		var reaction models.Reaction
		if err := rows.Scan(&reaction.Emoji, &reaction.Username); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reactions: %w", err)
	}
	return reactions, nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	var replyID *int64
	var replyUsername, replyText *string
	err := row.Scan(&msg.ID, &msg.Username, &msg.Text,
		&replyID, &replyUsername, &replyText,
		&msg.Edited, &msg.SeenBy, &msg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	if replyID != nil {
		msg.Reply = &models.ReplySnapshot{ID: *replyID}
		if replyUsername != nil {
			msg.Reply.Username = *replyUsername
		}
		if replyText != nil {
			msg.Reply.Text = *replyText
		}
	}
	return &msg, nil
}
