package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/infrastructure/postgres/generated"
	"github.com/iho/walletsettle/internal/usecase"
)

const walletOwnerConstraint = "wallets_owner_id_key"

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{
		queries: generated.New(db),
	}
}

// Create creates a new wallet.
func (r *WalletRepository) Create(ctx context.Context, wallet *domain.Wallet) error {
	_, err := r.queries.CreateWallet(ctx, generated.CreateWalletParams{
		ID:        wallet.ID,
		OwnerID:   string(wallet.OwnerID),
		Currency:  wallet.Currency,
		Balance:   decimalToNumeric(wallet.Balance),
		Version:   wallet.Version,
		CreatedAt: timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(wallet.UpdatedAt),
	})
	if isUniqueViolation(err, walletOwnerConstraint) {
		return domain.ErrWalletExists
	}

	return err
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByOwnersForUpdate locks the wallets of the given owners, ordered by owner.
// Owners without a wallet are absent from the result.
func (r *WalletRepository) GetByOwnersForUpdate(ctx context.Context, tx usecase.Transaction, owners []domain.PartyID) ([]*domain.Wallet, error) {
	queries := r.queries.WithTx(pgxTxFrom(tx))

	ids := make([]string, len(owners))
	for i, owner := range owners {
		ids[i] = string(owner)
	}

	rows, err := queries.GetWalletsByOwnersForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// UpdateBalance sets the balance of a wallet and bumps its version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	queries := r.queries.WithTx(pgxTxFrom(tx))

	return queries.UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:        row.ID,
		OwnerID:   domain.PartyID(row.OwnerID),
		Currency:  row.Currency,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
