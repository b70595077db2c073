// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned by stores when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// BalanceField selects which side of a balance ListBalancesWhere filters on.
type BalanceField string

const (
	FieldDebtor   BalanceField = "debtor"
	FieldCreditor BalanceField = "creditor"
)

// Valid reports whether f names a balance column.
func (f BalanceField) Valid() bool {
	return f == FieldDebtor || f == FieldCreditor
}

// BalanceStore persists pairwise balances.
// Lookups that find nothing return (nil, nil).
type BalanceStore interface {
	// FindBalance returns the debtor->creditor record.
	FindBalance(ctx context.Context, debtor, creditor string) (*models.PairwiseBalance, error)

	// FindPairBalance returns the record between a and b in either direction.
	// Inside a transaction, SQL stores lock the row until commit.
	FindPairBalance(ctx context.Context, a, b string) (*models.PairwiseBalance, error)

	// CreateBalance persists a new record. balance.ID is populated by the store.
	CreateBalance(ctx context.Context, balance *models.PairwiseBalance) error

	// UpdateBalance sets the amount of an existing record.
	UpdateBalance(ctx context.Context, balance *models.PairwiseBalance, amount decimal.Decimal) error

	// DeleteBalance removes a record.
	DeleteBalance(ctx context.Context, balance *models.PairwiseBalance) error

	// ListBalancesWhere returns every record whose field equals userID,
	// ordered by the other side's ID.
	ListBalancesWhere(ctx context.Context, field BalanceField, userID string) ([]*models.PairwiseBalance, error)

	// WithinTx runs fn against a transactional view of the store. fn's error
	// rolls the transaction back. Calling WithinTx on a transactional view
	// joins the existing transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx BalanceStore) error) error
}

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID and GetUserByEmail return ErrNotFound when there is no such user.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// FindUsersByEmailOrName returns users whose email or display name equals s.
	FindUsersByEmailOrName(ctx context.Context, s string) ([]*models.User, error)

	// IsWellFormedID reports whether s has the shape of a user ID.
	IsWellFormedID(s string) bool
}

// GroupStore persists groups.
type GroupStore interface {
	// CreateGroup persists a new group. ID and CreatedAt are populated when empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns ErrNotFound when there is no such group.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	ListGroups(ctx context.Context) ([]*models.Group, error)
}

// Store defines the full persistence surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// MongoDB) without changing the service layer.
type Store interface {
	UserStore
	BalanceStore
	GroupStore

	// Close releases any resources held by the store.
	Close() error
}
