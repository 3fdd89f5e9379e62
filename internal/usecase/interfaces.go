package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
)

// DistributedLock provides mutual exclusion keyed by string across processes.
type DistributedLock interface {
	// Lock tries to take the lock for key. It returns true only if the caller
	// now holds it; false means another holder is active.
	Lock(ctx context.Context, key string) (bool, error)
	// Unlock releases a lock held by the caller.
	Unlock(ctx context.Context, key string) error
}

// FundsMover performs the balance transfer for a transaction.
// An empty receipt with a nil error means the movement failed.
type FundsMover interface {
	MoveMoney(ctx context.Context, transactionID string, buyer, seller domain.PartyID, amount decimal.Decimal) (string, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id string) (*domain.Wallet, error)
	GetByOwnersForUpdate(ctx context.Context, tx Transaction, owners []domain.PartyID) ([]*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
}

// SettlementRepository defines data access for settlements.
type SettlementRepository interface {
	Create(ctx context.Context, tx Transaction, settlement *domain.Settlement) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Settlement, error)
	GetByTransactionIDTx(ctx context.Context, tx Transaction, transactionID string) (*domain.Settlement, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
	GenerateTransactionID() (string, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so it can be retried.
	Release(ctx context.Context, key string) error
}
