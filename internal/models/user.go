package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user.
//
// Users are created by the auth boundary and are read-only for the ledger:
// expenses and balances only reference User.ID.
type User struct {
	// ID is the canonical identifier for the user (UUID format).
	ID string

	// DisplayName is the human-readable name of the user.
	// Identifiers in expenses may match it exactly.
	DisplayName string

	// Email is the user's email address (unique).
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Empty for users created without credentials.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the user was last modified.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsWellFormedID reports whether s is a canonical user ID: a UUID in the
// lower-case hyphenated form NewUser produces. Other spellings of the same
// UUID are not IDs, so a user is never keyed by two different strings.
func IsWellFormedID(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.String() == s
}
