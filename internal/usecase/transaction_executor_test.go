package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/usecase"
	"github.com/iho/walletsettle/internal/usecase/mocks"
)

var createdAt = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type executorFixture struct {
	lock  *mocks.MockDistributedLock
	mover *mocks.MockFundsMover
	clock *mocks.MockClock
	exec  *usecase.TransactionExecutor
}

func newExecutorFixture(t *testing.T) *executorFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &executorFixture{
		lock:  mocks.NewMockDistributedLock(ctrl),
		mover: mocks.NewMockFundsMover(ctrl),
		clock: mocks.NewMockClock(ctrl),
	}
	f.exec = usecase.NewTransactionExecutor(f.lock, f.mover, f.clock, zerolog.Nop(), nil)

	return f
}

func newTransaction(t *testing.T, mutate func(*domain.TransactionInput)) *domain.Transaction {
	t.Helper()

	input := domain.TransactionInput{
		PreAssignedID: "t_000001",
		BuyerID:       "666001",
		SellerID:      "999001",
		ProductID:     "100001",
		OrderID:       "o_000001",
		Amount:        decimal.NewFromInt(100),
	}
	if mutate != nil {
		mutate(&input)
	}

	tx, err := domain.NewTransaction(input, nil, createdAt)
	require.NoError(t, err)

	return tx
}

func TestTransactionExecutor_InvalidTransaction(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TransactionInput)
	}{
		{name: "missing buyer", mutate: func(in *domain.TransactionInput) { in.BuyerID = "" }},
		{name: "missing seller", mutate: func(in *domain.TransactionInput) { in.SellerID = "" }},
		{name: "negative amount", mutate: func(in *domain.TransactionInput) { in.Amount = decimal.NewFromFloat(-10) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No EXPECT calls: touching the lock or mover fails the test.
			f := newExecutorFixture(t)
			tx := newTransaction(t, tt.mutate)

			outcome, err := f.exec.Execute(context.Background(), tx)

			require.ErrorIs(t, err, domain.ErrInvalidTransaction)
			assert.False(t, outcome.Success)
			assert.Equal(t, domain.TransactionStatusPending, tx.Status())
		})
	}
}

func TestTransactionExecutor_SuccessfulSettlement(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	gomock.InOrder(
		f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil),
		f.clock.EXPECT().Now().Return(createdAt.Add(time.Hour)),
		f.mover.EXPECT().
			MoveMoney(gomock.Any(), "t_000001", domain.PartyID("666001"), domain.PartyID("999001"), decimal.NewFromInt(100)).
			Return("r123", nil),
		f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1),
	)

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, domain.ReasonExecuted, outcome.Reason)
	assert.Equal(t, "r123", outcome.ReceiptID)
	assert.Equal(t, domain.TransactionStatusExecuted, tx.Status())
	assert.Equal(t, "r123", tx.ReceiptID())
}

func TestTransactionExecutor_IdempotentAfterExecution(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil).Times(1)
	f.clock.EXPECT().Now().Return(createdAt).Times(1)
	f.mover.EXPECT().MoveMoney(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("r123", nil).Times(1)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1)

	_, err := f.exec.Execute(context.Background(), tx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		outcome, err := f.exec.Execute(context.Background(), tx)
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, domain.ReasonAlreadyExecuted, outcome.Reason)
		assert.Equal(t, "r123", outcome.ReceiptID)
	}
}

func TestTransactionExecutor_RestoredExecutedTransactionShortCircuits(t *testing.T) {
	f := newExecutorFixture(t)

	tx, err := domain.RestoreTransaction(domain.TransactionState{
		ID:        "t_000001",
		BuyerID:   "666001",
		SellerID:  "999001",
		Amount:    decimal.NewFromInt(100),
		CreatedAt: createdAt,
		Status:    domain.TransactionStatusExecuted,
		ReceiptID: "r123",
	})
	require.NoError(t, err)

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "r123", outcome.ReceiptID)
}

func TestTransactionExecutor_LockNotAcquired(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(false, nil)

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, domain.ReasonLockNotAcquired, outcome.Reason)
	assert.True(t, outcome.Retryable())
	assert.Equal(t, domain.TransactionStatusPending, tx.Status())
}

func TestTransactionExecutor_ExpiryTakesPrecedence(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil)
	f.clock.EXPECT().Now().Return(createdAt.Add(domain.ExpiryWindow + time.Second))
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1)

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, domain.ReasonExpired, outcome.Reason)
	assert.False(t, outcome.Retryable())
	assert.Equal(t, domain.TransactionStatusExpired, tx.Status())
	assert.Empty(t, tx.ReceiptID())
}

func TestTransactionExecutor_ExpiredReinvocationRechecks(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)
	expiredAt := createdAt.Add(21 * 24 * time.Hour)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil).Times(3)
	f.clock.EXPECT().Now().Return(expiredAt).Times(3)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		outcome, err := f.exec.Execute(context.Background(), tx)
		require.NoError(t, err)
		assert.Equal(t, domain.ReasonExpired, outcome.Reason)
		assert.Equal(t, domain.TransactionStatusExpired, tx.Status())
	}
}

func TestTransactionExecutor_SettlementFailure(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil)
	f.clock.EXPECT().Now().Return(createdAt)
	f.mover.EXPECT().MoveMoney(gomock.Any(), "t_000001", gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1)

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Equal(t, domain.ReasonSettlementFailed, outcome.Reason)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status())
	assert.Empty(t, tx.ReceiptID())
}

func TestTransactionExecutor_RetryAfterSettlementFailure(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil).Times(2)
	f.clock.EXPECT().Now().Return(createdAt).Times(2)
	gomock.InOrder(
		f.mover.EXPECT().MoveMoney(gomock.Any(), "t_000001", gomock.Any(), gomock.Any(), gomock.Any()).Return("", nil),
		f.mover.EXPECT().MoveMoney(gomock.Any(), "t_000001", gomock.Any(), gomock.Any(), gomock.Any()).Return("r2", nil),
	)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(2)

	first, err := f.exec.Execute(context.Background(), tx)
	require.NoError(t, err)
	assert.False(t, first.Success)

	second, err := f.exec.Execute(context.Background(), tx)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, "r2", tx.ReceiptID())
}

func TestTransactionExecutor_MoverErrorReleasesLock(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)
	moverErr := errors.New("ledger unavailable")

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil)
	f.clock.EXPECT().Now().Return(createdAt)
	f.mover.EXPECT().MoveMoney(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", moverErr)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1)

	_, err := f.exec.Execute(context.Background(), tx)

	require.ErrorIs(t, err, moverErr)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status())
}

func TestTransactionExecutor_MoverPanicReleasesLock(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil)
	f.clock.EXPECT().Now().Return(createdAt)
	f.mover.EXPECT().MoveMoney(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, domain.PartyID, domain.PartyID, decimal.Decimal) (string, error) {
			panic("mover crashed")
		})
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(nil).Times(1)

	assert.Panics(t, func() {
		_, _ = f.exec.Execute(context.Background(), tx)
	})
}

func TestTransactionExecutor_LockErrorPropagates(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)
	lockErr := errors.New("redis down")

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(false, lockErr)

	_, err := f.exec.Execute(context.Background(), tx)

	require.ErrorIs(t, err, lockErr)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status())
}

func TestTransactionExecutor_UnlockErrorDoesNotHideOutcome(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").Return(true, nil)
	f.clock.EXPECT().Now().Return(createdAt)
	f.mover.EXPECT().MoveMoney(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("r123", nil)
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").Return(errors.New("lease already expired"))

	outcome, err := f.exec.Execute(context.Background(), tx)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestTransactionExecutor_CancelledContextAfterLockStillReleases(t *testing.T) {
	f := newExecutorFixture(t)
	tx := newTransaction(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	f.lock.EXPECT().Lock(gomock.Any(), "t_000001").DoAndReturn(func(context.Context, string) (bool, error) {
		cancel()
		return true, nil
	})
	f.clock.EXPECT().Now().Return(createdAt)
	f.mover.EXPECT().MoveMoney(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _, _ domain.PartyID, _ decimal.Decimal) (string, error) {
			assert.NoError(t, ctx.Err(), "mover must not observe caller cancellation")
			return "r123", nil
		})
	f.lock.EXPECT().Unlock(gomock.Any(), "t_000001").DoAndReturn(func(ctx context.Context, _ string) error {
		assert.NoError(t, ctx.Err())
		return nil
	})

	outcome, err := f.exec.Execute(ctx, tx)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
}
