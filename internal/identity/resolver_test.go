package identity

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

// fakeLookup is an in-memory UserLookup that counts lookups.
type fakeLookup struct {
	users   []*models.User
	err     error
	lookups int
}

func (f *fakeLookup) FindUsersByEmailOrName(_ context.Context, s string) ([]*models.User, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.User
	for _, u := range f.users {
		if u.Email == s || u.DisplayName == s {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeLookup) IsWellFormedID(s string) bool {
	return models.IsWellFormedID(s)
}

func TestResolve_FastPath(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup, nil)

	id := "7f4df3a2-8a43-4b8e-9d55-0d7c3b0a1f10"
	got, err := r.Resolve(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Zero(t, lookup.lookups, "well-formed IDs must not hit the lookup")
}

func TestResolve_ByEmailAndName(t *testing.T) {
	alice := models.NewUser("alice@example.com", "Alice", "")
	lookup := &fakeLookup{users: []*models.User{alice}}
	r := NewResolver(lookup, nil)
	ctx := context.Background()

	got, err := r.Resolve(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got)

	got, err = r.Resolve(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got)

	_, err = r.Resolve(ctx, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound, "matching is case-sensitive")
}

func TestResolve_Errors(t *testing.T) {
	bob1 := models.NewUser("bob1@example.com", "Bob", "")
	bob2 := models.NewUser("bob2@example.com", "Bob", "")

	tests := []struct {
		name       string
		lookup     *fakeLookup
		identifier string
		wantErr    error
	}{
		{"empty identifier", &fakeLookup{}, "", apperr.ErrInvalidInput},
		{"no match", &fakeLookup{users: []*models.User{bob1}}, "carol@example.com", apperr.ErrNotFound},
		{"two users share a name", &fakeLookup{users: []*models.User{bob1, bob2}}, "Bob", apperr.ErrAmbiguousIdentifier},
		{"lookup failure", &fakeLookup{err: errors.New("connection refused")}, "Bob", apperr.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.lookup, nil).Resolve(context.Background(), tt.identifier)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolve_SameUserMatchedTwice(t *testing.T) {
	u := models.NewUser("Sam", "Sam", "")
	lookup := &fakeLookup{users: []*models.User{u, u}}

	got, err := NewResolver(lookup, nil).Resolve(context.Background(), "Sam")

	require.NoError(t, err)
	assert.Equal(t, u.ID, got)
}

func TestResolveAll_StopsAtFirstFailure(t *testing.T) {
	alice := models.NewUser("alice@example.com", "Alice", "")
	lookup := &fakeLookup{users: []*models.User{alice}}
	r := NewResolver(lookup, nil)

	ids, err := r.ResolveAll(context.Background(), []string{"Alice", "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID, alice.ID}, ids)

	lookup.lookups = 0
	_, err = r.ResolveAll(context.Background(), []string{"Nobody", "Alice"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1, lookup.lookups)
}

func TestResolve_NonCanonicalIDFallsThroughToLookup(t *testing.T) {
	alice := models.NewUser("alice@example.com", "Alice", "")
	hex := strings.ReplaceAll(alice.ID, "-", "")
	variants := map[string]string{
		"upper case": strings.ToUpper(alice.ID),
		"urn prefix": "urn:uuid:" + alice.ID,
		"braces":     "{" + alice.ID + "}",
		"no dashes":  hex,
	}
	for name, identifier := range variants {
		t.Run(name, func(t *testing.T) {
			lookup := &fakeLookup{users: []*models.User{alice}}

			_, err := NewResolver(lookup, nil).Resolve(context.Background(), identifier)

			assert.ErrorIs(t, err, apperr.ErrNotFound)
			assert.Equal(t, 1, lookup.lookups, "only the canonical form skips the lookup")
		})
	}
}
