package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(user *models.User) *api.User {
	return &api.User{
		Id:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

func toAPIBalances(balances []*models.PairwiseBalance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = &api.Balance{
			Id:        b.ID,
			Debtor:    b.Debtor,
			Creditor:  b.Creditor,
			Amount:    b.Amount,
			UpdatedAt: b.UpdatedAt,
		}
	}
	return out
}

func toAPIGroup(group *models.Group) *api.Group {
	members := group.Members
	if members == nil {
		members = []string{}
	}
	return &api.Group{
		Id:        group.ID,
		Name:      group.Name,
		Members:   members,
		CreatedAt: group.CreatedAt,
	}
}

func toAPIMemberBalances(balances []calculator.MemberBalance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, bal := range balances {
		out[i] = &api.MemberBalance{
			UserId:     bal.UserID,
			NetBalance: bal.NetBalance,
			TotalOwes:  bal.TotalOwes,
			TotalOwed:  bal.TotalOwed,
		}
	}
	return out
}

func toAPIDebts(edges []calculator.DebtEdge) []*api.DebtEdge {
	out := make([]*api.DebtEdge, len(edges))
	for i, debt := range edges {
		out[i] = &api.DebtEdge{
			From:   debt.From,
			To:     debt.To,
			Amount: debt.Amount,
		}
	}
	return out
}
