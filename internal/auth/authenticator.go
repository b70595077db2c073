// Package auth registers ledger users and issues session tokens.
package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers and authenticates users. The service layer only
// depends on this interface, so the credential scheme can change without
// touching it.
type Authenticator interface {
	// Register creates a user. Email is optional unless a credential is
	// given; an empty credential creates a user who takes part in expenses
	// but cannot log in.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email when credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether credential is acceptable for Register.
	ValidateCredential(credential string) error
}
