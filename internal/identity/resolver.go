// Package identity resolves user-supplied identifiers (a canonical ID, an
// email or a display name) to canonical user IDs.
package identity

import (
	"context"
	"log/slog"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

// UserLookup is the user collaborator the resolver reads from.
type UserLookup interface {
	// FindUsersByEmailOrName returns every user whose email or display name
	// equals s exactly (case-sensitive). No match returns an empty slice.
	FindUsersByEmailOrName(ctx context.Context, s string) ([]*models.User, error)

	// IsWellFormedID reports whether s already is a canonical user ID.
	IsWellFormedID(s string) bool
}

// Resolver maps identifiers to canonical user IDs.
type Resolver struct {
	lookup UserLookup
	logger *slog.Logger
}

// NewResolver creates a resolver backed by lookup.
func NewResolver(lookup UserLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve returns the canonical ID for identifier.
//
// Well-formed IDs are returned unchanged without a lookup. Other identifiers
// must match exactly one user by email or display name: no match is
// apperr.KindNotFound and several matches are apperr.KindAmbiguousIdentifier.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (string, error) {
	const op = "identity.Resolve"

	if identifier == "" {
		return "", apperr.New(apperr.KindInvalidInput, op, "missing user identifier")
	}
	if r.lookup.IsWellFormedID(identifier) {
		return identifier, nil
	}

	users, err := r.lookup.FindUsersByEmailOrName(ctx, identifier)
	if err != nil {
		return "", apperr.Storage(op, err)
	}

	switch distinct := distinctIDs(users); len(distinct) {
	case 0:
		return "", apperr.New(apperr.KindNotFound, op, "user not found: %s", identifier)
	case 1:
		return distinct[0], nil
	default:
		r.logger.Warn("Identifier matches several users", "identifier", identifier, "matches", len(distinct))
		return "", apperr.New(apperr.KindAmbiguousIdentifier, op, "identifier %q matches %d users", identifier, len(distinct))
	}
}

// ResolveAll resolves identifiers in order, stopping at the first failure.
func (r *Resolver) ResolveAll(ctx context.Context, identifiers []string) ([]string, error) {
	ids := make([]string, len(identifiers))
	for i, identifier := range identifiers {
		id, err := r.Resolve(ctx, identifier)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// distinctIDs dedupes users matched twice (email of one equal to name of the same).
func distinctIDs(users []*models.User) []string {
	seen := make(map[string]bool, len(users))
	var ids []string
	for _, u := range users {
		if u == nil || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}
	return ids
}
