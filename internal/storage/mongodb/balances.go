package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// balanceDoc stores amounts as decimal strings. pair_lo and pair_hi hold
// the ordered pair so the unique index covers both directions.
type balanceDoc struct {
	ID        string `bson:"_id"`
	Debtor    string `bson:"debtor"`
	Creditor  string `bson:"creditor"`
	PairLo    string `bson:"pair_lo"`
	PairHi    string `bson:"pair_hi"`
	Amount    string `bson:"amount"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (d *balanceDoc) model() (*models.PairwiseBalance, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", d.Amount, err)
	}
	return &models.PairwiseBalance{
		ID:        d.ID,
		Debtor:    d.Debtor,
		Creditor:  d.Creditor,
		Amount:    amount,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func pairBounds(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

type balances struct {
	coll *mongo.Collection
}

// WithinTx joins the caller's session, carried by ctx.
func (b *balances) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.BalanceStore) error) error {
	return fn(ctx, b)
}

func (b *balances) FindBalance(ctx context.Context, debtor, creditor string) (*models.PairwiseBalance, error) {
	return b.findOne(ctx, bson.M{"debtor": debtor, "creditor": creditor})
}

func (b *balances) FindPairBalance(ctx context.Context, a, c string) (*models.PairwiseBalance, error) {
	lo, hi := pairBounds(a, c)
	return b.findOne(ctx, bson.M{"pair_lo": lo, "pair_hi": hi})
}

func (b *balances) findOne(ctx context.Context, filter bson.M) (*models.PairwiseBalance, error) {
	var doc balanceDoc
	err := b.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return doc.model()
}

func (b *balances) CreateBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	if balance.Debtor == balance.Creditor {
		return fmt.Errorf("failed to insert balance: debtor equals creditor %q", balance.Debtor)
	}
	if balance.ID == "" {
		balance.ID = uuid.New().String()
	}
	if balance.UpdatedAt == 0 {
		balance.UpdatedAt = time.Now().Unix()
	}
	lo, hi := pairBounds(balance.Debtor, balance.Creditor)
	_, err := b.coll.InsertOne(ctx, balanceDoc{
		ID:        balance.ID,
		Debtor:    balance.Debtor,
		Creditor:  balance.Creditor,
		PairLo:    lo,
		PairHi:    hi,
		Amount:    balance.Amount.String(),
		UpdatedAt: balance.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert balance: %w", err)
	}
	return nil
}

func (b *balances) UpdateBalance(ctx context.Context, balance *models.PairwiseBalance, amount decimal.Decimal) error {
	now := time.Now().Unix()
	res, err := b.coll.UpdateOne(ctx,
		bson.M{"_id": balance.ID},
		bson.M{"$set": bson.M{"amount": amount.String(), "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if res.MatchedCount != 1 {
		return fmt.Errorf("balance %s: %w", balance.ID, storage.ErrNotFound)
	}
	balance.Amount = amount
	balance.UpdatedAt = now
	return nil
}

func (b *balances) DeleteBalance(ctx context.Context, balance *models.PairwiseBalance) error {
	res, err := b.coll.DeleteOne(ctx, bson.M{"_id": balance.ID})
	if err != nil {
		return fmt.Errorf("failed to delete balance: %w", err)
	}
	if res.DeletedCount != 1 {
		return fmt.Errorf("balance %s: %w", balance.ID, storage.ErrNotFound)
	}
	return nil
}

func (b *balances) ListBalancesWhere(ctx context.Context, field storage.BalanceField, userID string) ([]*models.PairwiseBalance, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("invalid balance field: %q", field)
	}
	orderBy := storage.FieldCreditor
	if field == storage.FieldCreditor {
		orderBy = storage.FieldDebtor
	}

	cur, err := b.coll.Find(ctx,
		bson.M{string(field): userID},
		options.Find().SetSort(bson.D{{Key: string(orderBy), Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	var docs []balanceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode balances: %w", err)
	}

	out := make([]*models.PairwiseBalance, 0, len(docs))
	for i := range docs {
		balance, err := docs[i].model()
		if err != nil {
			return nil, err
		}
		out = append(out, balance)
	}
	return out, nil
}
