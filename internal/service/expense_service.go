package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/expense"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

// ExpenseRecorder records expenses and payments.
type ExpenseRecorder interface {
	RecordExpense(ctx context.Context, exp models.Expense) (*expense.Result, error)
	RecordPayment(ctx context.Context, from, to string, amount decimal.Decimal) (ledger.Outcome, error)
}

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	recorder ExpenseRecorder
	logger   *slog.Logger
}

// NewExpenseService creates an ExpenseService backed by recorder.
func NewExpenseService(recorder ExpenseRecorder, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{recorder: recorder, logger: logger}
}

// RecordExpense splits an expense and updates the pairwise balances.
func (s *ExpenseService) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.RecordExpenseResponse], error) {
	s.logger.Info("RecordExpense request received",
		"paid_by", req.Msg.PaidBy,
		"amount", req.Msg.Amount.String(),
		"split_type", req.Msg.SplitType,
		"splits_count", len(req.Msg.Splits),
	)

	participants := make([]models.ParticipantSpec, len(req.Msg.Splits))
	for i, split := range req.Msg.Splits {
		participants[i] = models.ParticipantSpec{
			Identifier: split.UserId,
			Amount:     split.Amount,
			Percent:    split.Percent,
		}
	}

	result, err := s.recorder.RecordExpense(ctx, models.Expense{
		Payer:        req.Msg.PaidBy,
		Amount:       req.Msg.Amount,
		Policy:       models.SplitPolicy(req.Msg.SplitType),
		Participants: participants,
	})
	if err != nil {
		s.logger.Error("RecordExpense failed", "paid_by", req.Msg.PaidBy, "error", err)
		return nil, toConnectError(err)
	}

	shares := make([]*api.Share, len(result.Shares))
	for i, share := range result.Shares {
		shares[i] = &api.Share{
			UserId:  share.UserID,
			Amount:  share.Amount,
			Outcome: string(share.Outcome),
		}
	}

	return connect.NewResponse(&api.RecordExpenseResponse{
		PayerId:   result.PayerID,
		Shares:    shares,
		Allocated: result.Allocated,
		Diff:      result.Diff,
	}), nil
}

// RecordPayment records a settle-up payment.
func (s *ExpenseService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	s.logger.Info("RecordPayment request received",
		"from", req.Msg.From,
		"to", req.Msg.To,
		"amount", req.Msg.Amount.String(),
	)

	outcome, err := s.recorder.RecordPayment(ctx, req.Msg.From, req.Msg.To, req.Msg.Amount)
	if err != nil {
		s.logger.Error("RecordPayment failed", "from", req.Msg.From, "to", req.Msg.To, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecordPaymentResponse{Outcome: string(outcome)}), nil
}
