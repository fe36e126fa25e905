// Package models defines the domain entities for the ledger and chat.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedLabel is the category applied to expenses without one.
const UncategorizedLabel = "Uncategorized"

// MonthKeyFormat renders a time as the calendar-month bucket key.
const MonthKeyFormat = "2006-01"

// User represents a registered account. The password is only ever held
// as a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session binds a browser session token to a user.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// Expense represents a single expense entry owned by one user.
type Expense struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"-"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	SpentAt   time.Time       `json:"date"`
	CreatedAt time.Time       `json:"created_at"`
}

// ReplySnapshot is a denormalized copy of a parent message captured at
// reply time. It is not a live reference: editing or deleting the parent
// leaves the snapshot stale.
type ReplySnapshot struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Reaction is a single emoji reaction on a message. The (username, emoji)
// pair is unique per message.
type Reaction struct {
	Emoji    string `json:"emoji"`
	Username string `json:"username"`
}

// Message represents a chat message.
type Message struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	Text      string         `json:"text"`
	Reply     *ReplySnapshot `json:"replyTo"`
	Edited    bool           `json:"edited"`
	SeenBy    []string       `json:"seenBy"`
	Reactions []Reaction     `json:"reactions"`
	CreatedAt time.Time      `json:"createdAt"`
}
