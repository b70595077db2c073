// Package expense records shared expenses and settle-up payments by turning
// them into pairwise debts for the ledger.
package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

var tracer = otel.Tracer("github.com/mmynk/splitledger/internal/expense")

// OutcomeSkipped marks a zero share, which is never sent to the ledger.
const OutcomeSkipped ledger.Outcome = "skipped"

// Resolver maps an identifier to a canonical user ID.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
}

// Ledger applies debts.
type Ledger interface {
	Net(ctx context.Context, debtor, creditor string, amount decimal.Decimal) (ledger.Outcome, error)
	NetAll(ctx context.Context, entries []ledger.Entry) ([]ledger.Outcome, error)
}

// ShareResult is one participant's share and what netting it did.
type ShareResult struct {
	UserID  string
	Amount  decimal.Decimal
	Outcome ledger.Outcome
}

// Result describes a recorded expense.
type Result struct {
	PayerID   string
	Shares    []ShareResult
	Allocated decimal.Decimal

	// Diff is Allocated minus the expense amount. Non-zero only for
	// EXACT and PERCENT splits that do not add up; EQUAL shares always
	// account for the whole amount.
	Diff decimal.Decimal
}

// Orchestrator validates expenses, resolves participants, computes shares
// and nets them into the ledger.
type Orchestrator struct {
	resolver Resolver
	ledger   Ledger
	atomic   bool
	metrics  *Metrics
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAtomic nets all shares of an expense in one transaction.
func WithAtomic(atomic bool) Option {
	return func(o *Orchestrator) {
		o.atomic = atomic
	}
}

// WithMetrics records expense results and durations.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(resolver Resolver, l Ledger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		resolver: resolver,
		ledger:   l,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RecordExpense splits exp among its participants and nets each share as a
// debt from the participant to the payer, in participant order.
//
// Outside atomic mode the first failure stops the remaining nets and the
// nets already applied stay applied.
func (o *Orchestrator) RecordExpense(ctx context.Context, exp models.Expense) (result *Result, err error) {
	const op = "expense.RecordExpense"

	start := time.Now()
	defer func() {
		o.observe(err, time.Since(start))
	}()

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("expense.policy", string(exp.Policy)),
		attribute.String("expense.amount", exp.Amount.String()),
		attribute.Int("expense.participants", len(exp.Participants)),
		attribute.Bool("expense.atomic", o.atomic),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, apperr.KindOf(err).String())
		}
	}()

	if err := validate(op, exp); err != nil {
		return nil, err
	}

	payerID, err := o.resolver.Resolve(ctx, exp.Payer)
	if err != nil {
		return nil, err
	}

	participants := make([]calculator.Participant, len(exp.Participants))
	for i, p := range exp.Participants {
		userID, err := o.resolver.Resolve(ctx, p.Identifier)
		if err != nil {
			return nil, err
		}
		participants[i] = calculator.Participant{UserID: userID, Amount: p.Amount, Percent: p.Percent}
	}

	shares, err := calculator.ComputeShares(exp.Amount, exp.Policy, participants)
	if err != nil {
		return nil, err
	}

	allocated, diff := calculator.Allocation(exp.Amount, shares)
	if exp.Policy == models.SplitEqual {
		// Division rounding leaves a residue in the last digit
		allocated, diff = exp.Amount, decimal.Zero
	}
	if !diff.IsZero() {
		o.logger.Warn("Expense shares do not add up to the amount",
			"payer", payerID,
			"policy", exp.Policy,
			"amount", exp.Amount.String(),
			"allocated", allocated.String(),
			"diff", diff.String(),
		)
	}

	result = &Result{
		PayerID:   payerID,
		Shares:    make([]ShareResult, len(shares)),
		Allocated: allocated,
		Diff:      diff,
	}
	for i, s := range shares {
		result.Shares[i] = ShareResult{UserID: s.UserID, Amount: s.Amount, Outcome: OutcomeSkipped}
	}

	if o.atomic {
		err = o.netAtomic(ctx, payerID, result)
	} else {
		err = o.netInOrder(ctx, payerID, result)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("Expense recorded",
		"payer", payerID,
		"policy", exp.Policy,
		"amount", exp.Amount.String(),
		"shares", len(shares),
	)
	return result, nil
}

func (o *Orchestrator) netInOrder(ctx context.Context, payerID string, result *Result) error {
	for i := range result.Shares {
		share := &result.Shares[i]
		if share.Amount.IsZero() {
			continue
		}
		outcome, err := o.ledger.Net(ctx, share.UserID, payerID, share.Amount)
		if err != nil {
			o.logger.Error("Expense partially applied",
				"payer", payerID,
				"applied", i,
				"total", len(result.Shares),
				"error", err,
			)
			return err
		}
		share.Outcome = outcome
	}
	return nil
}

func (o *Orchestrator) netAtomic(ctx context.Context, payerID string, result *Result) error {
	var (
		entries []ledger.Entry
		index   []int
	)
	for i, share := range result.Shares {
		if share.Amount.IsZero() {
			continue
		}
		entries = append(entries, ledger.Entry{Debtor: share.UserID, Creditor: payerID, Amount: share.Amount})
		index = append(index, i)
	}
	if len(entries) == 0 {
		return nil
	}

	outcomes, err := o.ledger.NetAll(ctx, entries)
	if err != nil {
		return err
	}
	for j, outcome := range outcomes {
		result.Shares[index[j]].Outcome = outcome
	}
	return nil
}

// RecordPayment records that from paid to amount to settle up. The payment
// is netted as a debt from to back to from.
func (o *Orchestrator) RecordPayment(ctx context.Context, from, to string, amount decimal.Decimal) (ledger.Outcome, error) {
	const op = "expense.RecordPayment"

	if from == "" || to == "" {
		return "", apperr.New(apperr.KindInvalidRequest, op, "payer and payee are required")
	}
	if !amount.IsPositive() {
		return "", apperr.New(apperr.KindInvalidRequest, op, "amount must be positive, got %s", amount)
	}

	fromID, err := o.resolver.Resolve(ctx, from)
	if err != nil {
		return "", err
	}
	toID, err := o.resolver.Resolve(ctx, to)
	if err != nil {
		return "", err
	}

	outcome, err := o.ledger.Net(ctx, toID, fromID, amount)
	if err != nil {
		return "", err
	}
	o.logger.Info("Payment recorded", "from", fromID, "to", toID, "amount", amount.String(), "outcome", outcome)
	return outcome, nil
}

func (o *Orchestrator) observe(err error, elapsed time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.observeExpense(resultLabel(err), elapsed)
}

func validate(op string, exp models.Expense) error {
	if exp.Payer == "" {
		return apperr.New(apperr.KindInvalidRequest, op, "missing payer")
	}
	if !exp.Amount.IsPositive() {
		return apperr.New(apperr.KindInvalidRequest, op, "amount must be positive, got %s", exp.Amount)
	}
	if !exp.Policy.Valid() {
		return apperr.New(apperr.KindInvalidSplitPolicy, op, "unknown split policy %q", exp.Policy)
	}
	if len(exp.Participants) == 0 {
		return apperr.New(apperr.KindInvalidRequest, op, "must have at least one participant")
	}
	for i, p := range exp.Participants {
		if p.Identifier == "" {
			return apperr.New(apperr.KindInvalidRequest, op, "participant %d has no identifier", i)
		}
		switch exp.Policy {
		case models.SplitExact:
			if p.Amount.IsNegative() {
				return apperr.New(apperr.KindInvalidRequest, op, "participant %q has negative amount %s", p.Identifier, p.Amount)
			}
		case models.SplitPercent:
			if p.Percent.IsNegative() || p.Percent.GreaterThan(decimal.NewFromInt(100)) {
				return apperr.New(apperr.KindInvalidRequest, op, "participant %q percent %s is outside [0, 100]", p.Identifier, p.Percent)
			}
		}
	}
	return nil
}
