package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and lookups", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.DisplayName != "Alice" || byID.Email != "alice@example.com" {
			t.Errorf("Unexpected user: %+v", byID)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != user.ID {
			t.Errorf("Expected ID %s, got %s", user.ID, byEmail.ID)
		}
	})

	t.Run("Missing user returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "does-not-exist")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		_, err = store.GetUserByEmail(ctx, "nobody@example.com")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Users without email do not collide", func(t *testing.T) {
		for _, name := range []string{"NoMail1", "NoMail2"} {
			if err := store.CreateUser(ctx, models.NewUser("", name, "")); err != nil {
				t.Fatalf("CreateUser(%s) failed: %v", name, err)
			}
		}
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Other", ""))
		if err == nil {
			t.Error("Expected unique constraint error")
		}
	})

	t.Run("FindUsersByEmailOrName matches either field", func(t *testing.T) {
		if err := store.CreateUser(ctx, models.NewUser("sam1@example.com", "Sam", "")); err != nil {
			t.Fatal(err)
		}
		if err := store.CreateUser(ctx, models.NewUser("sam2@example.com", "Sam", "")); err != nil {
			t.Fatal(err)
		}

		byName, err := store.FindUsersByEmailOrName(ctx, "Sam")
		if err != nil {
			t.Fatalf("FindUsersByEmailOrName failed: %v", err)
		}
		if len(byName) != 2 {
			t.Errorf("Expected 2 users named Sam, got %d", len(byName))
		}

		byEmail, err := store.FindUsersByEmailOrName(ctx, "sam1@example.com")
		if err != nil {
			t.Fatalf("FindUsersByEmailOrName failed: %v", err)
		}
		if len(byEmail) != 1 {
			t.Errorf("Expected 1 user, got %d", len(byEmail))
		}

		none, err := store.FindUsersByEmailOrName(ctx, "sam")
		if err != nil {
			t.Fatalf("FindUsersByEmailOrName failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected exact match only, got %d users", len(none))
		}
	})

	t.Run("IsWellFormedID", func(t *testing.T) {
		if !store.IsWellFormedID(models.NewUser("", "x", "").ID) {
			t.Error("Expected generated ID to be well formed")
		}
		if store.IsWellFormedID("Alice") {
			t.Error("Expected display name not to be well formed")
		}
	})

	t.Run("Group round trip keeps member order", func(t *testing.T) {
		group := &models.Group{Name: "Trip", Members: []string{"u3", "u1", "u2"}}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" || group.CreatedAt == 0 {
			t.Fatalf("Expected ID and CreatedAt to be set: %+v", group)
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Trip" {
			t.Errorf("Expected name Trip, got %s", got.Name)
		}
		want := []string{"u3", "u1", "u2"}
		if len(got.Members) != len(want) {
			t.Fatalf("Expected %d members, got %d", len(want), len(got.Members))
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("Member %d: expected %s, got %s", i, want[i], got.Members[i])
			}
		}

		groups, err := store.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(groups) != 1 || len(groups[0].Members) != 3 {
			t.Errorf("Unexpected groups: %+v", groups)
		}
	})

	t.Run("GetGroup not found", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestBalanceStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("Create and find in both directions", func(t *testing.T) {
		b := &models.PairwiseBalance{Debtor: "a", Creditor: "b", Amount: decimal.RequireFromString("12.50")}
		if err := store.CreateBalance(ctx, b); err != nil {
			t.Fatalf("CreateBalance failed: %v", err)
		}
		if b.ID == "" {
			t.Fatal("Expected ID to be generated")
		}

		got, err := store.FindBalance(ctx, "a", "b")
		if err != nil {
			t.Fatalf("FindBalance failed: %v", err)
		}
		if got == nil || !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Fatalf("Unexpected balance: %+v", got)
		}

		reverse, err := store.FindBalance(ctx, "b", "a")
		if err != nil {
			t.Fatalf("FindBalance failed: %v", err)
		}
		if reverse != nil {
			t.Errorf("Expected no b->a record, got %+v", reverse)
		}

		pair, err := store.FindPairBalance(ctx, "b", "a")
		if err != nil {
			t.Fatalf("FindPairBalance failed: %v", err)
		}
		if pair == nil || pair.ID != b.ID {
			t.Errorf("Expected pair lookup to find %s, got %+v", b.ID, pair)
		}
	})

	t.Run("Opposite record for the same pair is rejected", func(t *testing.T) {
		err := store.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "b", Creditor: "a", Amount: decimal.NewFromInt(1)})
		if err == nil {
			t.Error("Expected unique pair constraint error")
		}
	})

	t.Run("Self balance is rejected", func(t *testing.T) {
		err := store.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "c", Creditor: "c", Amount: decimal.NewFromInt(1)})
		if err == nil {
			t.Error("Expected check constraint error")
		}
	})

	t.Run("Update and delete", func(t *testing.T) {
		b := &models.PairwiseBalance{Debtor: "x", Creditor: "y", Amount: decimal.NewFromInt(5)}
		if err := store.CreateBalance(ctx, b); err != nil {
			t.Fatal(err)
		}
		if err := store.UpdateBalance(ctx, b, decimal.NewFromInt(9)); err != nil {
			t.Fatalf("UpdateBalance failed: %v", err)
		}
		got, _ := store.FindBalance(ctx, "x", "y")
		if got == nil || !got.Amount.Equal(decimal.NewFromInt(9)) {
			t.Errorf("Expected amount 9, got %+v", got)
		}

		if err := store.DeleteBalance(ctx, b); err != nil {
			t.Fatalf("DeleteBalance failed: %v", err)
		}
		got, _ = store.FindBalance(ctx, "x", "y")
		if got != nil {
			t.Errorf("Expected record to be gone, got %+v", got)
		}

		if err := store.DeleteBalance(ctx, b); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("ListBalancesWhere orders by counterpart", func(t *testing.T) {
		for _, creditor := range []string{"p3", "p1", "p2"} {
			err := store.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "p0", Creditor: creditor, Amount: decimal.NewFromInt(1)})
			if err != nil {
				t.Fatal(err)
			}
		}

		owes, err := store.ListBalancesWhere(ctx, storage.FieldDebtor, "p0")
		if err != nil {
			t.Fatalf("ListBalancesWhere failed: %v", err)
		}
		if len(owes) != 3 {
			t.Fatalf("Expected 3 records, got %d", len(owes))
		}
		for i, want := range []string{"p1", "p2", "p3"} {
			if owes[i].Creditor != want {
				t.Errorf("Record %d: expected creditor %s, got %s", i, want, owes[i].Creditor)
			}
		}

		owedBy, err := store.ListBalancesWhere(ctx, storage.FieldCreditor, "p2")
		if err != nil {
			t.Fatalf("ListBalancesWhere failed: %v", err)
		}
		if len(owedBy) != 1 || owedBy[0].Debtor != "p0" {
			t.Errorf("Unexpected owedBy: %+v", owedBy)
		}

		if _, err := store.ListBalancesWhere(ctx, "amount", "p0"); err == nil {
			t.Error("Expected error for invalid field")
		}
	})

	t.Run("WithinTx rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithinTx(ctx, func(ctx context.Context, tx storage.BalanceStore) error {
			if err := tx.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "r1", Creditor: "r2", Amount: decimal.NewFromInt(3)}); err != nil {
				return err
			}
			// Nested WithinTx joins the outer transaction.
			return tx.WithinTx(ctx, func(ctx context.Context, inner storage.BalanceStore) error {
				got, err := inner.FindBalance(ctx, "r1", "r2")
				if err != nil {
					return err
				}
				if got == nil {
					t.Error("Expected uncommitted record to be visible inside the transaction")
				}
				return boom
			})
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected boom, got %v", err)
		}

		got, err := store.FindBalance(ctx, "r1", "r2")
		if err != nil {
			t.Fatal(err)
		}
		if got != nil {
			t.Errorf("Expected rollback, found %+v", got)
		}
	})

	t.Run("WithinTx commits", func(t *testing.T) {
		err := store.WithinTx(ctx, func(ctx context.Context, tx storage.BalanceStore) error {
			return tx.CreateBalance(ctx, &models.PairwiseBalance{Debtor: "c1", Creditor: "c2", Amount: decimal.NewFromInt(4)})
		})
		if err != nil {
			t.Fatalf("WithinTx failed: %v", err)
		}
		got, _ := store.FindBalance(ctx, "c1", "c2")
		if got == nil {
			t.Error("Expected committed record")
		}
	})
}
