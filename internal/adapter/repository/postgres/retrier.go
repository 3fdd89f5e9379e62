package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const (
	pgErrSerializationFailure = "40001"
	pgErrDeadlock             = "40P01"
	pgErrLockNotAvailable     = "55P03"
)

// SQLSTATEs that abort a settlement transaction without it having taken effect.
var retryableCodes = map[string]bool{
	pgErrSerializationFailure: true,
	pgErrDeadlock:             true,
	pgErrLockNotAvailable:     true,
}

// RetryPolicy bounds how a settlement transaction is re-run.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy returns the policy used when none is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Retrier implements usecase.Retrier on top of backoff.
type Retrier struct {
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetrier creates a Retrier with the given policy.
func NewRetrier(policy RetryPolicy, logger zerolog.Logger) *Retrier {
	return &Retrier{
		policy: policy,
		logger: logger.With().Str("component", "settlement_retrier").Logger(),
	}
}

// Retry re-runs operation while it fails with a transient database error.
// Business refusals and constraint violations are returned on first sight.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.policy.InitialInterval
	eb.MaxInterval = r.policy.MaxInterval
	eb.MaxElapsedTime = r.policy.MaxElapsedTime

	b := backoff.WithContext(backoff.WithMaxRetries(eb, r.policy.MaxRetries), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := operation()
		if err != nil && !isRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Str("sqlstate", sqlState(err)).
			Int("attempt", attempt).
			Dur("backoff", wait).
			Msg("transient database error, retrying settlement")
	})
}

func isRetryableError(err error) bool {
	if code := sqlState(err); code != "" {
		return retryableCodes[code]
	}
	// Connection failures before anything reached the server.
	return pgconn.SafeToRetry(err)
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
