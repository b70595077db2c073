package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

// RedisOptions configures the distributed locker.
type RedisOptions struct {
	// Prefix is prepended to every key (default "splitledger:").
	Prefix string

	// Expiry is how long a lock is held before it auto-expires.
	Expiry time.Duration

	// Tries is the number of acquisition attempts.
	Tries int

	// RetryDelay is the delay between attempts.
	RetryDelay time.Duration
}

// DefaultRedisOptions returns defaults sized for single pair updates.
func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Prefix:     "splitledger:",
		Expiry:     10 * time.Second,
		Tries:      32,
		RetryDelay: 50 * time.Millisecond,
	}
}

// Redis is a distributed Locker using the RedLock algorithm, for running
// several server instances against one ledger store.
type Redis struct {
	rs     *redsync.Redsync
	opts   RedisOptions
	logger *slog.Logger
}

var _ Locker = (*Redis)(nil)

// NewRedis creates a distributed locker on client.
func NewRedis(client goredislib.UniversalClient, opts RedisOptions, logger *slog.Logger) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis lock: nil client")
	}
	if opts.Expiry <= 0 {
		return nil, errors.New("redis lock: expiry must be greater than 0")
	}
	if opts.Tries < 1 {
		return nil, errors.New("redis lock: tries must be at least 1")
	}
	if logger == nil {
		logger = slog.Default()
	}
	pool := goredis.NewPool(client)
	return &Redis{rs: redsync.New(pool), opts: opts, logger: logger}, nil
}

// Lock acquires key across all instances sharing the Redis server.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	name := r.opts.Prefix + key
	mutex := r.rs.NewMutex(name,
		redsync.WithExpiry(r.opts.Expiry),
		redsync.WithTries(r.opts.Tries),
		redsync.WithRetryDelay(r.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	return func() {
		// Release even if the caller's context is already cancelled
		ctx, cancel := context.WithTimeout(context.Background(), r.opts.Expiry)
		defer cancel()
		if ok, err := mutex.UnlockContext(ctx); err != nil || !ok {
			r.logger.Warn("Failed to release lock", "key", name, "error", err)
		}
	}, nil
}
