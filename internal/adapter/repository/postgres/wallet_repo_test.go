package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletsettle/internal/domain"
)

func TestWalletRepository_GetByID_NotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("SELECT (.+) FROM wallets WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	repo := NewWalletRepository(pool)

	wallet, err := repo.GetByID(context.Background(), "missing")

	require.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.Nil(t, wallet)
	assertExpectations(t, pool)
}

func TestWalletRepository_GetByID_StorageError(t *testing.T) {
	pool := newMockPool(t)
	storageErr := errors.New("connection refused")
	pool.ExpectQuery("SELECT (.+) FROM wallets").WillReturnError(storageErr)

	_, err := NewWalletRepository(pool).GetByID(context.Background(), "w-1")

	require.ErrorIs(t, err, storageErr)
}

func TestWalletRepository_Create_DuplicateOwner(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("INSERT INTO wallets").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: walletOwnerConstraint})

	now := time.Now().UTC()
	err := NewWalletRepository(pool).Create(context.Background(), &domain.Wallet{
		ID:        "w-1",
		OwnerID:   "buyer",
		Currency:  "USD",
		Balance:   decimal.NewFromInt(10),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})

	require.ErrorIs(t, err, domain.ErrWalletExists)
	assertExpectations(t, pool)
}

func TestWalletRepository_UpdateBalance(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("UPDATE wallets SET balance").
		WithArgs("w-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := NewWalletRepository(pool).UpdateBalance(context.Background(), tx, "w-1", decimal.NewFromInt(40), time.Now())

	require.NoError(t, err)
	assertExpectations(t, pool)
}

func TestWalletRepository_GetByOwnersForUpdate_Error(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	lockErr := &pgconn.PgError{Code: pgErrDeadlock}

	pool.ExpectQuery("FOR UPDATE").
		WithArgs([]string{"buyer", "seller"}).
		WillReturnError(lockErr)

	_, err := NewWalletRepository(pool).GetByOwnersForUpdate(
		context.Background(), tx, []domain.PartyID{"buyer", "seller"},
	)

	require.ErrorIs(t, err, lockErr)
	assert.True(t, isRetryableError(err))
	assertExpectations(t, pool)
}
