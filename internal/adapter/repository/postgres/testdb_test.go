package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/adapter/repository/postgres"
	"github.com/iho/walletsettle/internal/domain"
	infra "github.com/iho/walletsettle/internal/infrastructure/postgres"
)

const migrationsPath = "../../../../migrations"

// testDB is a real Postgres database for integration tests. Tests using it
// are skipped unless TEST_DATABASE_URL is set.
type testDB struct {
	pool *pgxpool.Pool
	t    *testing.T
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	if err := infra.NewMigrator(dbURL, migrationsPath, zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewPool(ctx, dbURL, 20, 2)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	db := &testDB{pool: pool, t: t}
	db.truncateAll(ctx)

	return db
}

func (db *testDB) truncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.pool.Exec(ctx, `TRUNCATE TABLE settlements, wallets CASCADE`); err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

func (db *testDB) createWallet(ctx context.Context, owner domain.PartyID, currency string, balance decimal.Decimal) *domain.Wallet {
	db.t.Helper()

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        postgres.NewULIDGenerator().Generate(),
		OwnerID:   owner,
		Currency:  currency,
		Balance:   balance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := postgres.NewWalletRepository(db.pool).Create(ctx, wallet); err != nil {
		db.t.Fatalf("failed to create wallet: %v", err)
	}

	return wallet
}

func (db *testDB) balance(ctx context.Context, id string) decimal.Decimal {
	db.t.Helper()

	wallet, err := postgres.NewWalletRepository(db.pool).GetByID(ctx, id)
	if err != nil {
		db.t.Fatalf("failed to load wallet: %v", err)
	}

	return wallet.Balance
}

func (db *testDB) settlementCount(ctx context.Context, transactionID string) int {
	db.t.Helper()

	var n int
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM settlements WHERE transaction_id = $1`, transactionID).Scan(&n); err != nil {
		db.t.Fatalf("failed to count settlements: %v", err)
	}

	return n
}
