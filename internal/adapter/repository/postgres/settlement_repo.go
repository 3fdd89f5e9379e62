package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/infrastructure/postgres/generated"
	"github.com/iho/walletsettle/internal/usecase"
)

const settlementTransactionConstraint = "settlements_transaction_id_key"

// SettlementRepository implements usecase.SettlementRepository.
type SettlementRepository struct {
	queries *generated.Queries
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(db generated.DBTX) *SettlementRepository {
	return &SettlementRepository{
		queries: generated.New(db),
	}
}

// Create records a settlement within a transaction. A second settlement
// for the same transaction id yields domain.ErrSettlementExists.
func (r *SettlementRepository) Create(ctx context.Context, tx usecase.Transaction, settlement *domain.Settlement) error {
	queries := r.queries.WithTx(pgxTxFrom(tx))

	_, err := queries.CreateSettlement(ctx, generated.CreateSettlementParams{
		ID:             settlement.ID,
		TransactionID:  settlement.TransactionID,
		BuyerWalletID:  settlement.BuyerWalletID,
		SellerWalletID: settlement.SellerWalletID,
		Amount:         decimalToNumeric(settlement.Amount),
		CreatedAt:      timeToPgTimestamptz(settlement.CreatedAt),
	})
	if isUniqueViolation(err, settlementTransactionConstraint) {
		return domain.ErrSettlementExists
	}

	return err
}

// GetByTransactionID retrieves the settlement for a transaction.
func (r *SettlementRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Settlement, error) {
	return getSettlement(ctx, r.queries, transactionID)
}

// GetByTransactionIDTx retrieves the settlement for a transaction inside tx.
func (r *SettlementRepository) GetByTransactionIDTx(ctx context.Context, tx usecase.Transaction, transactionID string) (*domain.Settlement, error) {
	return getSettlement(ctx, r.queries.WithTx(pgxTxFrom(tx)), transactionID)
}

func getSettlement(ctx context.Context, queries *generated.Queries, transactionID string) (*domain.Settlement, error) {
	row, err := queries.GetSettlementByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettlementNotFound
		}

		return nil, err
	}

	return &domain.Settlement{
		ID:             row.ID,
		TransactionID:  row.TransactionID,
		BuyerWalletID:  row.BuyerWalletID,
		SellerWalletID: row.SellerWalletID,
		Amount:         numericToDecimal(row.Amount),
		CreatedAt:      row.CreatedAt.Time,
	}, nil
}
