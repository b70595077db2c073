package models

import (
	"github.com/shopspring/decimal"
)

// SplitPolicy is the rule used to divide an expense among its participants.
type SplitPolicy string

const (
	// SplitEqual divides the total equally among all participants.
	SplitEqual SplitPolicy = "EQUAL"
	// SplitExact charges each participant an explicit amount.
	SplitExact SplitPolicy = "EXACT"
	// SplitPercent charges each participant a percentage of the total.
	SplitPercent SplitPolicy = "PERCENT"
)

// Valid reports whether p is one of the known split policies.
func (p SplitPolicy) Valid() bool {
	switch p {
	case SplitEqual, SplitExact, SplitPercent:
		return true
	}
	return false
}

// ParticipantSpec identifies one participant of an expense.
//
// Identifier may be a canonical user ID, an email or a display name.
// Amount is only read for EXACT splits and Percent only for PERCENT splits.
type ParticipantSpec struct {
	Identifier string
	Amount     decimal.Decimal
	Percent    decimal.Decimal
}

// Expense is an incoming shared expense. It is not persisted: recording it
// only updates pairwise balances.
type Expense struct {
	// Payer identifies who paid the full amount.
	Payer string

	// Amount is the total paid. Must be positive.
	Amount decimal.Decimal

	// Policy selects how Amount is divided.
	Policy SplitPolicy

	// Participants are the people sharing the expense, in netting order.
	// The payer may appear here; their own share has no ledger effect.
	Participants []ParticipantSpec
}
