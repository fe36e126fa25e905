// Package repository provides database access for users, sessions,
// expenses and chat messages.
package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist
	// (or is not visible to the caller).
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken indicates a registration conflict on username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken indicates a registration conflict on email.
	ErrEmailTaken = errors.New("email already registered")
)
