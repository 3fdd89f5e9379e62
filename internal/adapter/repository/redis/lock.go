package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/walletsettle/internal/infrastructure/metrics"
)

// DefaultLockExpiry bounds how long a crashed holder can block a transaction.
const DefaultLockExpiry = 30 * time.Second

// ErrLockNotHeld is returned when a lock expired before it was released.
var ErrLockNotHeld = errors.New("lock was not held or already expired")

// DistributedLock implements usecase.DistributedLock with redsync.
//
// Lock never waits: a key held by another process reports false.
// Acquired mutexes are kept per key so Unlock can release them with
// the token they were taken with.
type DistributedLock struct {
	rs      *redsync.Redsync
	prefix  string
	expiry  time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	held map[string]*redsync.Mutex
}

// NewDistributedLock creates a new DistributedLock.
func NewDistributedLock(client *redis.Client, expiry time.Duration, logger zerolog.Logger, m *metrics.Metrics) *DistributedLock {
	if expiry <= 0 {
		expiry = DefaultLockExpiry
	}

	return &DistributedLock{
		rs:      redsync.New(goredis.NewPool(client)),
		prefix:  "lock:transaction:",
		expiry:  expiry,
		logger:  logger.With().Str("component", "distributed_lock").Logger(),
		metrics: m,
		held:    make(map[string]*redsync.Mutex),
	}
}

// Lock tries once to take the lock for key.
func (l *DistributedLock) Lock(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	_, busy := l.held[key]
	l.mu.Unlock()
	if busy {
		return false, nil
	}

	mutex := l.rs.NewMutex(l.prefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(1),
	)

	l.observe("lock")
	if err := mutex.LockContext(ctx); err != nil {
		if isLockContention(err) {
			l.logger.Debug().Str("key", key).Msg("lock already held by another process")
			return false, nil
		}

		l.fail("lock")
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	l.mu.Lock()
	if _, busy := l.held[key]; busy {
		// Lost a local race after winning in Redis; keep the first holder.
		l.mu.Unlock()
		_, _ = mutex.UnlockContext(ctx)
		return false, nil
	}
	l.held[key] = mutex
	l.mu.Unlock()

	return true, nil
}

// Unlock releases key. Releasing a key this process does not hold is a no-op.
func (l *DistributedLock) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	mutex, ok := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	l.observe("unlock")
	released, err := mutex.UnlockContext(ctx)
	if released {
		return nil
	}

	if err == nil || strings.Contains(err.Error(), "already expired") {
		l.logger.Warn().Str("key", key).Msg("lock expired before release")
		return ErrLockNotHeld
	}

	l.fail("unlock")
	return fmt.Errorf("failed to release lock %s: %w", key, err)
}

func (l *DistributedLock) observe(op string) {
	if l.metrics != nil {
		l.metrics.RedisOperations.WithLabelValues(op).Inc()
	}
}

func (l *DistributedLock) fail(op string) {
	if l.metrics != nil {
		l.metrics.RedisErrors.WithLabelValues(op).Inc()
	}
}

// redsync reports contention as ErrFailed or as an ErrTaken whose
// message says the lock is already taken.
func isLockContention(err error) bool {
	return errors.Is(err, redsync.ErrFailed) ||
		strings.Contains(err.Error(), "lock already taken")
}
