// Package ledger maintains the pairwise balance ledger: the netting engine
// that folds new debts into balances, and the read-only balance query.
package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/mmynk/splitledger/internal/apperr"
	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var tracer = otel.Tracer("github.com/mmynk/splitledger/internal/ledger")

// Outcome describes what a net did to the pair's balance.
type Outcome string

const (
	OutcomeSelf      Outcome = "self"      // debtor == creditor, nothing stored
	OutcomeCreated   Outcome = "created"   // first debt between the pair
	OutcomeIncreased Outcome = "increased" // added to a same-direction debt
	OutcomeReduced   Outcome = "reduced"   // opposite debt shrank but survives
	OutcomeCancelled Outcome = "cancelled" // opposite debt matched exactly, record deleted
	OutcomeFlipped   Outcome = "flipped"   // opposite debt exceeded, direction reversed
)

// Entry is one debt to fold into the ledger.
type Entry struct {
	Debtor   string
	Creditor string
	Amount   decimal.Decimal
}

// Engine is the only writer of pairwise balances.
type Engine struct {
	store   storage.BalanceStore
	locker  lock.Locker
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker overrides the in-process pair locker.
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

// WithMetrics records netting outcomes.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a netting engine on store.
func NewEngine(store storage.BalanceStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		locker: lock.NewLocal(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Net records that debtor owes creditor amount, netting it against any
// existing balance between the two so that at most one directional record
// survives. A debtor equal to the creditor is a no-op.
func (e *Engine) Net(ctx context.Context, debtor, creditor string, amount decimal.Decimal) (Outcome, error) {
	const op = "ledger.Net"

	if debtor != "" && debtor == creditor {
		e.observe(OutcomeSelf)
		return OutcomeSelf, nil
	}
	if err := validateEntry(op, Entry{Debtor: debtor, Creditor: creditor, Amount: amount}); err != nil {
		return "", err
	}

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("ledger.debtor", debtor),
		attribute.String("ledger.creditor", creditor),
		attribute.String("ledger.amount", amount.String()),
	)

	unlock, err := e.locker.Lock(ctx, lock.PairKey(debtor, creditor))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lock")
		return "", apperr.Storage(op, err)
	}
	defer unlock()

	var outcome Outcome
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx storage.BalanceStore) error {
		var err error
		outcome, err = e.apply(ctx, tx, debtor, creditor, amount)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "net")
		return "", apperr.Storage(op, err)
	}

	span.SetAttributes(attribute.String("ledger.outcome", string(outcome)))
	e.observe(outcome)
	return outcome, nil
}

// NetAll applies entries in order inside a single store transaction: either
// every entry is applied or none is. All pair locks are taken, in sorted
// order, before the transaction begins.
func (e *Engine) NetAll(ctx context.Context, entries []Entry) ([]Outcome, error) {
	const op = "ledger.NetAll"

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Debtor != "" && entry.Debtor == entry.Creditor {
			continue
		}
		if err := validateEntry(op, entry); err != nil {
			return nil, err
		}
		keys = append(keys, lock.PairKey(entry.Debtor, entry.Creditor))
	}

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int("ledger.entries", len(entries)))

	unlock, err := lock.LockAll(ctx, e.locker, keys)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Storage(op, err)
	}
	defer unlock()

	outcomes := make([]Outcome, len(entries))
	err = e.store.WithinTx(ctx, func(ctx context.Context, tx storage.BalanceStore) error {
		for i, entry := range entries {
			if entry.Debtor == entry.Creditor {
				outcomes[i] = OutcomeSelf
				continue
			}
			outcome, err := e.apply(ctx, tx, entry.Debtor, entry.Creditor, entry.Amount)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "net all")
		return nil, apperr.Storage(op, err)
	}

	for _, outcome := range outcomes {
		e.observe(outcome)
	}
	return outcomes, nil
}

// apply folds one debt into the pair's balance. The caller holds the pair
// lock and a transaction on tx.
func (e *Engine) apply(ctx context.Context, tx storage.BalanceStore, debtor, creditor string, amount decimal.Decimal) (Outcome, error) {
	existing, err := tx.FindPairBalance(ctx, debtor, creditor)
	if err != nil {
		return "", err
	}

	now := e.now().Unix()

	// No balance yet: the debt starts here
	if existing == nil {
		err := tx.CreateBalance(ctx, &models.PairwiseBalance{
			Debtor:    debtor,
			Creditor:  creditor,
			Amount:    amount,
			UpdatedAt: now,
		})
		return OutcomeCreated, err
	}

	// Same direction: accumulate
	if existing.Debtor == debtor {
		return OutcomeIncreased, tx.UpdateBalance(ctx, existing, existing.Amount.Add(amount))
	}

	// Opposite direction: creditor already owes debtor R
	switch cmp := existing.Amount.Cmp(amount); {
	case cmp > 0:
		return OutcomeReduced, tx.UpdateBalance(ctx, existing, existing.Amount.Sub(amount))
	case cmp < 0:
		if err := tx.DeleteBalance(ctx, existing); err != nil {
			return "", err
		}
		err := tx.CreateBalance(ctx, &models.PairwiseBalance{
			Debtor:    debtor,
			Creditor:  creditor,
			Amount:    amount.Sub(existing.Amount),
			UpdatedAt: now,
		})
		return OutcomeFlipped, err
	default:
		return OutcomeCancelled, tx.DeleteBalance(ctx, existing)
	}
}

func (e *Engine) observe(outcome Outcome) {
	if e.metrics != nil {
		e.metrics.observeNet(outcome)
	}
	e.logger.Debug("Balance netted", "outcome", outcome)
}

func validateEntry(op string, entry Entry) error {
	if entry.Debtor == "" || entry.Creditor == "" {
		return apperr.New(apperr.KindInvalidInput, op, "debtor and creditor are required")
	}
	if !entry.Amount.IsPositive() {
		return apperr.New(apperr.KindInvalidInput, op, "amount must be positive, got %s", entry.Amount)
	}
	return nil
}
