// Package mongodb provides a MongoDB-backed implementation of the storage.Store
// interface.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

const (
	usersCollection    = "users"
	balancesCollection = "balances"
	groupsCollection   = "groups"
)

// Options configures a Store.
type Options struct {
	URI      string
	Database string

	// Transactions runs WithinTx in a multi-document transaction. It needs a
	// replica set or sharded cluster; without it each write commits alone.
	Transactions bool
}

// Store implements storage.Store on MongoDB.
type Store struct {
	balances
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// New connects, pings and ensures indexes.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = "splitledger"
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(opts.Database)
	s := &Store{
		balances:     balances{coll: db.Collection(balancesCollection)},
		client:       client,
		db:           db,
		transactions: opts.Transactions,
	}
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		balancesCollection: {
			{Keys: bson.D{{Key: "pair_lo", Value: 1}, {Key: "pair_hi", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "debtor", Value: 1}}},
			{Keys: bson.D{{Key: "creditor", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "display_name", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// WithinTx runs fn in a session transaction when transactions are enabled.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.BalanceStore) error) error {
	if !s.transactions {
		return fn(ctx, &s.balances)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &s.balances)
	})
	return err
}
