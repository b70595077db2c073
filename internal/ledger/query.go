package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Balances is a user's view of the ledger.
type Balances struct {
	// Owes holds the records where the user is the debtor.
	Owes []*models.PairwiseBalance

	// OwedBy holds the records where the user is the creditor.
	OwedBy []*models.PairwiseBalance
}

// Query reads balances. It never writes.
type Query struct {
	store storage.BalanceStore
}

// NewQuery creates a balance query on store.
func NewQuery(store storage.BalanceStore) *Query {
	return &Query{store: store}
}

// Balances returns everything userID owes and is owed. A user without
// records gets empty, non-nil slices.
func (q *Query) Balances(ctx context.Context, userID string) (*Balances, error) {
	const op = "ledger.Balances"

	if userID == "" {
		return nil, apperr.New(apperr.KindInvalidInput, op, "missing user id")
	}

	owes, err := q.store.ListBalancesWhere(ctx, storage.FieldDebtor, userID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	owedBy, err := q.store.ListBalancesWhere(ctx, storage.FieldCreditor, userID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	if owes == nil {
		owes = []*models.PairwiseBalance{}
	}
	if owedBy == nil {
		owedBy = []*models.PairwiseBalance{}
	}
	return &Balances{Owes: owes, OwedBy: owedBy}, nil
}

// Among returns the balances between members of a set of users, grouped by
// debtor in member order.
func (q *Query) Among(ctx context.Context, members []string) ([]*models.PairwiseBalance, error) {
	const op = "ledger.Among"

	inSet := make(map[string]bool, len(members))
	var ordered []string
	for _, m := range members {
		if !inSet[m] {
			inSet[m] = true
			ordered = append(ordered, m)
		}
	}

	var out []*models.PairwiseBalance
	seen := make(map[string]bool)
	for _, m := range ordered {
		owes, err := q.store.ListBalancesWhere(ctx, storage.FieldDebtor, m)
		if err != nil {
			return nil, apperr.Storage(op, err)
		}
		for _, b := range owes {
			if inSet[b.Creditor] && !seen[b.ID] {
				seen[b.ID] = true
				out = append(out, b)
			}
		}
	}
	return out, nil
}
