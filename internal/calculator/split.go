package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Participant is a resolved participant of an expense.
type Participant struct {
	UserID  string
	Amount  decimal.Decimal // EXACT only
	Percent decimal.Decimal // PERCENT only
}

// Share is the amount one participant owes the payer.
type Share struct {
	UserID string
	Amount decimal.Decimal
}

// ComputeShares divides amount among participants according to policy.
//
//   - EQUAL:   amount / len(participants) each
//   - EXACT:   each participant's explicit amount
//   - PERCENT: amount × percent / 100 each
//
// Shares are returned in participant order, one per participant, so a
// participant listed twice owes twice. EXACT and PERCENT allocations are not
// reconciled against amount; see Allocation.
func ComputeShares(amount decimal.Decimal, policy models.SplitPolicy, participants []Participant) ([]Share, error) {
	if !policy.Valid() {
		return nil, apperr.New(apperr.KindInvalidSplitPolicy, "calculator.ComputeShares", "unknown split policy %q", policy)
	}
	if len(participants) == 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "calculator.ComputeShares", "must have at least one participant")
	}

	shares := make([]Share, len(participants))
	switch policy {
	case models.SplitEqual:
		perPerson := amount.Div(decimal.NewFromInt(int64(len(participants))))
		for i, p := range participants {
			shares[i] = Share{UserID: p.UserID, Amount: perPerson}
		}
	case models.SplitExact:
		for i, p := range participants {
			shares[i] = Share{UserID: p.UserID, Amount: p.Amount}
		}
	case models.SplitPercent:
		for i, p := range participants {
			shares[i] = Share{UserID: p.UserID, Amount: amount.Mul(p.Percent).Div(hundred)}
		}
	}

	return shares, nil
}

// Allocation returns the sum of shares and how far it is from total
// (positive when the shares over-allocate).
func Allocation(total decimal.Decimal, shares []Share) (allocated, diff decimal.Decimal) {
	allocated = decimal.Zero
	for _, s := range shares {
		allocated = allocated.Add(s.Amount)
	}
	return allocated, allocated.Sub(total)
}
