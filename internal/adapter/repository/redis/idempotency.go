package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/walletsettle/internal/infrastructure/metrics"
)

// PendingMarker is stored under a key while its first request is running.
const PendingMarker = "processing"

// IdempotencyStore implements usecase.IdempotencyStore using Redis.
type IdempotencyStore struct {
	client  *redis.Client
	prefix  string
	metrics *metrics.Metrics
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client, m *metrics.Metrics) *IdempotencyStore {
	return &IdempotencyStore{
		client:  client,
		prefix:  "idempotency:",
		metrics: m,
	}
}

// CheckAndSet returns the stored value for key if there is one. Otherwise
// it claims the key, with response when given or with PendingMarker.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key
	s.observe("check")

	var value any = PendingMarker
	if response != nil {
		value = response
	}

	set, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
	if err != nil {
		s.fail("check")
		return false, nil, err
	}
	if set {
		return false, nil, nil
	}

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between SETNX and GET; the caller may proceed.
		return false, nil, nil
	}
	if err != nil {
		s.fail("check")
		return false, nil, err
	}

	return true, existing, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.observe("update")
	if err := s.client.Set(ctx, s.prefix+key, response, ttl).Err(); err != nil {
		s.fail("update")
		return err
	}
	return nil
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.observe("release")
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		s.fail("release")
		return err
	}
	return nil
}

func (s *IdempotencyStore) observe(op string) {
	if s.metrics != nil {
		s.metrics.RedisOperations.WithLabelValues("idempotency_" + op).Inc()
	}
}

func (s *IdempotencyStore) fail(op string) {
	if s.metrics != nil {
		s.metrics.RedisErrors.WithLabelValues("idempotency_" + op).Inc()
	}
}
