package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/infrastructure/metrics"
)

// WalletService moves money between Postgres wallets and implements FundsMover.
type WalletService struct {
	txManager      TransactionManager
	walletRepo     WalletRepository
	settlementRepo SettlementRepository
	idGen          IDGenerator
	retrier        Retrier
	logger         zerolog.Logger
	metrics        *metrics.Metrics
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	txManager TransactionManager,
	walletRepo WalletRepository,
	settlementRepo SettlementRepository,
	idGen IDGenerator,
	retrier Retrier,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *WalletService {
	return &WalletService{
		txManager:      txManager,
		walletRepo:     walletRepo,
		settlementRepo: settlementRepo,
		idGen:          idGen,
		retrier:        retrier,
		logger:         logger.With().Str("component", "wallet_service").Logger(),
		metrics:        metrics,
	}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	OwnerID  domain.PartyID
	Currency string
	Balance  decimal.Decimal
}

// CreateWallet opens a wallet for a party.
func (s *WalletService) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.ValidateWalletOwner(input.OwnerID); err != nil {
		return nil, err
	}

	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidateBalance(input.Balance); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:        s.idGen.Generate(),
		OwnerID:   domain.PartyID(strings.TrimSpace(string(input.OwnerID))),
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		Balance:   input.Balance,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.WalletsCreated.Inc()
	}

	return wallet, nil
}

// GetWallet retrieves a wallet by ID.
func (s *WalletService) GetWallet(ctx context.Context, id string) (*domain.Wallet, error) {
	return s.walletRepo.GetByID(ctx, id)
}

// GetSettlement retrieves the settlement recorded for a transaction.
func (s *WalletService) GetSettlement(ctx context.Context, transactionID string) (*domain.Settlement, error) {
	return s.settlementRepo.GetByTransactionID(ctx, transactionID)
}

// MoveMoney debits the buyer's wallet and credits the seller's wallet.
//
// It returns the settlement id as the receipt. A transaction that was
// already settled returns its existing receipt without moving money again.
// Business refusals (missing wallet, currency mismatch, insufficient
// funds) return an empty receipt and a nil error.
func (s *WalletService) MoveMoney(ctx context.Context, transactionID string, buyer, seller domain.PartyID, amount decimal.Decimal) (string, error) {
	var receiptID string

	err := s.retrier.Retry(ctx, func() error {
		var err error
		receiptID, err = s.moveMoney(ctx, transactionID, buyer, seller, amount)
		return err
	})
	if errors.Is(err, domain.ErrSettlementExists) {
		// A concurrent mover committed first; hand back its receipt.
		existing, getErr := s.settlementRepo.GetByTransactionID(ctx, transactionID)
		if getErr != nil {
			return "", getErr
		}
		return existing.ID, nil
	}
	if err != nil {
		return "", err
	}

	return receiptID, nil
}

func (s *WalletService) moveMoney(ctx context.Context, transactionID string, buyer, seller domain.PartyID, amount decimal.Decimal) (string, error) {
	log := s.logger.With().Str("transaction_id", transactionID).Logger()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	existing, err := s.settlementRepo.GetByTransactionIDTx(txCtx, tx, transactionID)
	if err == nil {
		log.Info().Str("receipt_id", existing.ID).Msg("transaction already settled")
		return existing.ID, nil
	}
	if !errors.Is(err, domain.ErrSettlementNotFound) {
		return "", err
	}

	if buyer == seller {
		return s.refuse(log, domain.ErrSameWallet), nil
	}

	// Lock wallets in a stable order (DEADLOCK PREVENTION)
	owners := []domain.PartyID{buyer, seller}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })

	wallets, err := s.walletRepo.GetByOwnersForUpdate(txCtx, tx, owners)
	if err != nil {
		return "", err
	}

	var buyerWallet, sellerWallet *domain.Wallet
	for _, w := range wallets {
		switch w.OwnerID {
		case buyer:
			buyerWallet = w
		case seller:
			sellerWallet = w
		}
	}

	if buyerWallet == nil || sellerWallet == nil {
		return s.refuse(log, domain.ErrWalletNotFound), nil
	}

	if buyerWallet.Currency != sellerWallet.Currency {
		return s.refuse(log, domain.ErrCurrencyMismatch), nil
	}

	if err := buyerWallet.ValidateDebit(amount); err != nil {
		return s.refuse(log, err), nil
	}

	now := time.Now().UTC()
	settlement := &domain.Settlement{
		ID:             s.idGen.Generate(),
		TransactionID:  transactionID,
		BuyerWalletID:  buyerWallet.ID,
		SellerWalletID: sellerWallet.ID,
		Amount:         amount,
		CreatedAt:      now,
	}

	if err := settlement.Validate(); err != nil {
		return s.refuse(log, err), nil
	}

	if err := s.settlementRepo.Create(txCtx, tx, settlement); err != nil {
		return "", err
	}

	if err := s.walletRepo.UpdateBalance(txCtx, tx, buyerWallet.ID, buyerWallet.ApplyDebit(amount), now); err != nil {
		return "", err
	}

	if err := s.walletRepo.UpdateBalance(txCtx, tx, sellerWallet.ID, sellerWallet.ApplyCredit(amount), now); err != nil {
		return "", err
	}

	if err := tx.Commit(txCtx); err != nil {
		return "", err
	}

	log.Info().Str("receipt_id", settlement.ID).Str("amount", amount.String()).Msg("funds moved")

	return settlement.ID, nil
}

func (s *WalletService) refuse(log zerolog.Logger, reason error) string {
	if s.metrics != nil {
		s.metrics.SettlementsFailed.WithLabelValues(refusalLabel(reason)).Inc()
	}
	log.Warn().Err(reason).Msg("funds movement refused")

	return ""
}

func refusalLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		return "wallet_not_found"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "currency_mismatch"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrSameWallet):
		return "same_wallet"
	default:
		return "invalid"
	}
}
