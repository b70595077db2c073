package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

// IdentifierResolver maps identifiers to canonical user IDs.
type IdentifierResolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
	ResolveAll(ctx context.Context, identifiers []string) ([]string, error)
}

// BalanceService implements the Connect BalanceService.
type BalanceService struct {
	resolver IdentifierResolver
	query    *ledger.Query
	logger   *slog.Logger
}

// NewBalanceService creates a BalanceService.
func NewBalanceService(resolver IdentifierResolver, query *ledger.Query, logger *slog.Logger) *BalanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BalanceService{resolver: resolver, query: query, logger: logger}
}

// GetBalances returns what a user owes and is owed.
func (s *BalanceService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	s.logger.Info("GetBalances request received", "user", req.Msg.User)

	userID, err := s.resolver.Resolve(ctx, req.Msg.User)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances, err := s.query.Balances(ctx, userID)
	if err != nil {
		s.logger.Error("GetBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	summary := calculator.Summarize(balances.Owes, balances.OwedBy)

	s.logger.Info("GetBalances successful",
		"user_id", userID,
		"owes_count", len(balances.Owes),
		"owed_by_count", len(balances.OwedBy),
	)

	return connect.NewResponse(&api.GetBalancesResponse{
		UserId:      userID,
		Owes:        toAPIBalances(balances.Owes),
		OwedBy:      toAPIBalances(balances.OwedBy),
		TotalOwes:   summary.TotalOwes,
		TotalOwedBy: summary.TotalOwedBy,
		Net:         summary.Net,
	}), nil
}
