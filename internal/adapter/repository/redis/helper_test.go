package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// redisFixture is one in-memory Redis shared by the locks and stores under test.
type redisFixture struct {
	client *redislib.Client
	server *miniredis.Miniredis
}

func newRedisFixture(t *testing.T) *redisFixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return &redisFixture{client: client, server: server}
}

func (f *redisFixture) lock(expiry time.Duration) *DistributedLock {
	return NewDistributedLock(f.client, expiry, zerolog.Nop(), nil)
}

func (f *redisFixture) idempotencyStore() *IdempotencyStore {
	return NewIdempotencyStore(f.client, nil)
}

// lockHeld reports whether a lease for the transaction is present in Redis.
func (f *redisFixture) lockHeld(transactionID string) bool {
	return f.server.Exists("lock:transaction:" + transactionID)
}
