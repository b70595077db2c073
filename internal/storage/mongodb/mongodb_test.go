package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func TestPairBounds(t *testing.T) {
	lo, hi := pairBounds("b", "a")
	assert.Equal(t, "a", lo)
	assert.Equal(t, "b", hi)

	lo2, hi2 := pairBounds("a", "b")
	assert.Equal(t, lo, lo2)
	assert.Equal(t, hi, hi2)
}

func TestBalanceDocModel(t *testing.T) {
	doc := balanceDoc{ID: "1", Debtor: "a", Creditor: "b", Amount: "33.3333333333333333"}
	b, err := doc.model()
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(decimal.RequireFromString("33.3333333333333333")))

	doc.Amount = "abc"
	_, err = doc.model()
	assert.Error(t, err)
}

func TestNewRequiresURI(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := New(ctx, Options{URI: uri, Database: "splitledger_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.db.Drop(context.Background())
		_ = store.Close()
	})
	return store
}

func TestMongoStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := &models.PairwiseBalance{Debtor: "a", Creditor: "b", Amount: decimal.NewFromInt(10)}
	require.NoError(t, store.CreateBalance(ctx, b))

	pair, err := store.FindPairBalance(ctx, "b", "a")
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, b.ID, pair.ID)

	err = store.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "b", Creditor: "a", Amount: decimal.NewFromInt(1)})
	assert.Error(t, err, "unique pair index should reject the opposite record")

	require.NoError(t, store.UpdateBalance(ctx, pair, decimal.NewFromInt(4)))
	owes, err := store.ListBalancesWhere(ctx, storage.FieldDebtor, "a")
	require.NoError(t, err)
	require.Len(t, owes, 1)
	assert.True(t, owes[0].Amount.Equal(decimal.NewFromInt(4)))

	require.NoError(t, store.DeleteBalance(ctx, pair))
	assert.True(t, errors.Is(store.DeleteBalance(ctx, pair), storage.ErrNotFound))

	user := models.NewUser("", "Alice", "")
	require.NoError(t, store.CreateUser(ctx, user))
	require.NoError(t, store.CreateUser(ctx, models.NewUser("", "Bob", "")))
	found, err := store.FindUsersByEmailOrName(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, user.ID, found[0].ID)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	group := &models.Group{Name: "Trip", Members: []string{user.ID}}
	require.NoError(t, store.CreateGroup(ctx, group))
	got, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{user.ID}, got.Members)
}
