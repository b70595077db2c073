package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Summary totals one user's position across their pairwise balances.
type Summary struct {
	TotalOwes   decimal.Decimal // What the user owes others
	TotalOwedBy decimal.Decimal // What others owe the user
	Net         decimal.Decimal // Positive = owed money, Negative = owes money
}

// MemberBalance represents the net position of one group member.
type MemberBalance struct {
	UserID     string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalOwes  decimal.Decimal
	TotalOwed  decimal.Decimal
}

// DebtEdge represents a suggested transfer from one member to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Summarize totals the balances a user owes and is owed.
func Summarize(owes, owedBy []*models.PairwiseBalance) Summary {
	s := Summary{TotalOwes: decimal.Zero, TotalOwedBy: decimal.Zero}
	for _, b := range owes {
		s.TotalOwes = s.TotalOwes.Add(b.Amount)
	}
	for _, b := range owedBy {
		s.TotalOwedBy = s.TotalOwedBy.Add(b.Amount)
	}
	s.Net = s.TotalOwedBy.Sub(s.TotalOwes)
	return s
}

// SimplifyDebts computes each member's net position from a set of pairwise
// balances and a reduced list of transfers that would settle everyone.
//
// Algorithm:
//   - net_balance = total owed to the member - total the member owes
//   - creditors (net > 0) and debtors (net < 0) are sorted largest first
//   - greedy: match the largest debt with the largest credit until settled
//
// Balances involving users outside members are ignored. Results are sorted
// by user ID so the output is deterministic.
func SimplifyDebts(members []string, balances []*models.PairwiseBalance) ([]MemberBalance, []DebtEdge) {
	positions := make(map[string]*MemberBalance, len(members))
	for _, m := range members {
		if _, exists := positions[m]; !exists {
			positions[m] = &MemberBalance{
				UserID:     m,
				NetBalance: decimal.Zero,
				TotalOwes:  decimal.Zero,
				TotalOwed:  decimal.Zero,
			}
		}
	}

	for _, b := range balances {
		debtor, okDebtor := positions[b.Debtor]
		creditor, okCreditor := positions[b.Creditor]
		if !okDebtor || !okCreditor {
			continue
		}
		debtor.TotalOwes = debtor.TotalOwes.Add(b.Amount)
		creditor.TotalOwed = creditor.TotalOwed.Add(b.Amount)
	}

	memberBalances := make([]MemberBalance, 0, len(positions))
	for _, pos := range positions {
		pos.NetBalance = pos.TotalOwed.Sub(pos.TotalOwes)
		memberBalances = append(memberBalances, *pos)
	}
	sort.Slice(memberBalances, func(i, j int) bool {
		return memberBalances[i].UserID < memberBalances[j].UserID
	})

	// Split into creditors (owed money) and debtors (owe money), amounts positive
	type position struct {
		userID string
		amount decimal.Decimal
	}
	var creditors, debtors []position
	for _, bal := range memberBalances {
		if bal.NetBalance.IsPositive() {
			creditors = append(creditors, position{bal.UserID, bal.NetBalance})
		} else if bal.NetBalance.IsNegative() {
			debtors = append(debtors, position{bal.UserID, bal.NetBalance.Neg()})
		}
	}
	largestFirst := func(p []position) {
		sort.SliceStable(p, func(i, j int) bool {
			return p[i].amount.GreaterThan(p[j].amount)
		})
	}
	largestFirst(creditors)
	largestFirst(debtors)

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].userID,
				To:     creditors[j].userID,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		// Move to next debtor/creditor if fully settled
		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}

	return memberBalances, edges
}
