package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "credvault/pkg/domain-errors"
	platformsync "credvault/pkg/platform/sync"
)

// Shard contention metrics for the in-memory transaction
var (
	shardLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "credvault_access_shard_lock_wait_seconds",
		Help:    "Time spent waiting to acquire shard lock",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	shardLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "credvault_access_shard_lock_acquisitions_total",
		Help: "Total number of shard lock acquisitions",
	})
)

// Stores is the set of record stores visible inside a transaction.
type Stores struct {
	Requests     Store
	Certificates CertificateReader
}

// StoreTx provides a transactional boundary spanning access requests and certificates.
// Implementations may wrap a database transaction or, in memory, a sharded lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// DefaultTxTimeout bounds a transaction whose context carries no deadline.
const DefaultTxTimeout = 5 * time.Second

type shardedTx struct {
	mu      *platformsync.ShardedMutex
	stores  Stores
	timeout time.Duration
}

// NewShardedTx serializes transactions per certificate for the in-memory stores.
func NewShardedTx(stores Stores) StoreTx {
	return &shardedTx{
		mu:     platformsync.NewShardedMutex(platformsync.DefaultShards),
		stores: stores,
	}
}

func (t *shardedTx) RunInTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = DefaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	key := shardKey(ctx)

	lockStart := time.Now()
	t.mu.Lock(key)
	shardLockWaitDuration.Observe(time.Since(lockStart).Seconds())
	shardLockAcquisitions.Inc()
	defer t.mu.Unlock(key)

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.stores)
}

// shardKey picks a shard from the certificate id in context, or shard 0.
func shardKey(ctx context.Context) string {
	if key, ok := ctx.Value(txShardKeyCtx).(string); ok {
		return key
	}
	return ""
}

type txShardKey struct{}

var txShardKeyCtx = txShardKey{}

func withShardKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, txShardKeyCtx, key)
}
