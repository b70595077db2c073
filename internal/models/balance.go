package models

import (
	"github.com/shopspring/decimal"
)

// PairwiseBalance records that Debtor owes Creditor Amount.
//
// For any two users at most one record exists across both directions, and
// Amount is always strictly positive: a balance that nets to zero is deleted.
type PairwiseBalance struct {
	// ID is the store-assigned handle of the record.
	ID string

	// Debtor is the user who owes money.
	Debtor string

	// Creditor is the user who is owed money.
	Creditor string

	// Amount is the outstanding debt.
	Amount decimal.Decimal

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}

// Counterpart returns the other side of the balance from userID's point of view.
func (b *PairwiseBalance) Counterpart(userID string) string {
	if b.Debtor == userID {
		return b.Creditor
	}
	return b.Debtor
}
