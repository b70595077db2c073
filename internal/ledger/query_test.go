package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/splitledger/internal/apperr"
)

func TestQueryBalances(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(store)
	query := NewQuery(store)
	ctx := context.Background()

	for _, e := range []Entry{
		{Debtor: "A", Creditor: "P", Amount: d("33.33")},
		{Debtor: "B", Creditor: "P", Amount: d("33.33")},
		{Debtor: "P", Creditor: "C", Amount: d("12")},
	} {
		if _, err := engine.Net(ctx, e.Debtor, e.Creditor, e.Amount); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("owes and owed by", func(t *testing.T) {
		b, err := query.Balances(ctx, "P")
		if err != nil {
			t.Fatalf("Balances failed: %v", err)
		}
		if len(b.Owes) != 1 || b.Owes[0].Creditor != "C" {
			t.Errorf("Unexpected owes: %+v", b.Owes)
		}
		if len(b.OwedBy) != 2 || b.OwedBy[0].Debtor != "A" || b.OwedBy[1].Debtor != "B" {
			t.Errorf("Unexpected owedBy: %+v", b.OwedBy)
		}
	})

	t.Run("unknown user gets empty lists", func(t *testing.T) {
		b, err := query.Balances(ctx, "nobody")
		if err != nil {
			t.Fatalf("Balances failed: %v", err)
		}
		if b.Owes == nil || b.OwedBy == nil {
			t.Error("Expected non-nil slices")
		}
		if len(b.Owes)+len(b.OwedBy) != 0 {
			t.Errorf("Expected no records, got %+v", b)
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		_, err := query.Balances(ctx, "")
		if !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Expected invalid input, got %v", err)
		}
	})

	t.Run("among members", func(t *testing.T) {
		among, err := query.Among(ctx, []string{"A", "P", "A"})
		if err != nil {
			t.Fatalf("Among failed: %v", err)
		}
		if len(among) != 1 || among[0].Debtor != "A" || among[0].Creditor != "P" {
			t.Errorf("Unexpected balances: %+v", among)
		}
	})
}

func TestAmongFollowsMemberOrder(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(store)
	query := NewQuery(store)
	ctx := context.Background()

	for _, e := range []Entry{
		{Debtor: "D", Creditor: "A", Amount: d("4")},
		{Debtor: "B", Creditor: "A", Amount: d("1")},
		{Debtor: "C", Creditor: "B", Amount: d("2")},
		{Debtor: "A", Creditor: "C", Amount: d("3")},
	} {
		if _, err := engine.Net(ctx, e.Debtor, e.Creditor, e.Amount); err != nil {
			t.Fatal(err)
		}
	}

	members := []string{"C", "A", "D", "B", "C"}
	want := []string{"C", "A", "D", "B"}
	for i := 0; i < 20; i++ {
		among, err := query.Among(ctx, members)
		if err != nil {
			t.Fatalf("Among failed: %v", err)
		}
		if len(among) != len(want) {
			t.Fatalf("Expected %d balances, got %d", len(want), len(among))
		}
		for j, b := range among {
			if b.Debtor != want[j] {
				t.Fatalf("Call %d: balance %d debtor = %s, want %s", i, j, b.Debtor, want[j])
			}
		}
	}
}
