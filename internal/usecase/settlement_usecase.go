package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
)

// Executor runs a single execution attempt for a transaction.
type Executor interface {
	Execute(ctx context.Context, tx *domain.Transaction) (domain.Outcome, error)
}

// SettlementUseCase builds transactions from caller input and executes them.
type SettlementUseCase struct {
	executor Executor
	idGen    IDGenerator
	clock    Clock
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(executor Executor, idGen IDGenerator, clock Clock) *SettlementUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &SettlementUseCase{
		executor: executor,
		idGen:    idGen,
		clock:    clock,
	}
}

// ExecuteTransactionInput represents input for executing a transaction.
//
// Status and ReceiptID describe state recorded by an earlier attempt; when
// Status is set the transaction is restored rather than created, so an
// executed transaction short-circuits. A restored transaction requires
// CreatedAt.
type ExecuteTransactionInput struct {
	CreatedAt     *time.Time
	PreAssignedID string
	BuyerID       domain.PartyID
	SellerID      domain.PartyID
	ProductID     string
	OrderID       string
	Amount        decimal.Decimal
	Status        domain.TransactionStatus
	ReceiptID     string
}

// ExecuteTransactionResult is the transaction state after execution.
type ExecuteTransactionResult struct {
	Transaction domain.TransactionState
	Outcome     domain.Outcome
}

// ExecuteTransaction creates (or restores) a transaction and executes it once.
func (uc *SettlementUseCase) ExecuteTransaction(ctx context.Context, input ExecuteTransactionInput) (*ExecuteTransactionResult, error) {
	tx, err := uc.buildTransaction(input)
	if err != nil {
		return nil, err
	}

	outcome, err := uc.executor.Execute(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &ExecuteTransactionResult{
		Transaction: tx.Snapshot(),
		Outcome:     outcome,
	}, nil
}

func (uc *SettlementUseCase) buildTransaction(input ExecuteTransactionInput) (*domain.Transaction, error) {
	if input.Status != "" {
		return uc.restoreTransaction(input)
	}

	createdAt := uc.clock.Now()
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	var generate func() (string, error)
	if uc.idGen != nil {
		generate = uc.idGen.GenerateTransactionID
	}

	return domain.NewTransaction(domain.TransactionInput{
		PreAssignedID: input.PreAssignedID,
		BuyerID:       input.BuyerID,
		SellerID:      input.SellerID,
		ProductID:     input.ProductID,
		OrderID:       input.OrderID,
		Amount:        input.Amount,
	}, generate, createdAt)
}

// restoreTransaction never defaults created_at: recorded state keeps its
// original expiry window.
func (uc *SettlementUseCase) restoreTransaction(input ExecuteTransactionInput) (*domain.Transaction, error) {
	var createdAt time.Time
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}

	tx, err := domain.RestoreTransaction(domain.TransactionState{
		ID:        input.PreAssignedID,
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		Amount:    input.Amount,
		CreatedAt: createdAt,
		Status:    input.Status,
		ReceiptID: input.ReceiptID,
	})
	if err != nil {
		return nil, err
	}

	if tx.Status() == domain.TransactionStatusExpired && !tx.IsExpired(uc.clock.Now()) {
		return nil, fmt.Errorf("%w: expired status before the expiry window has passed", domain.ErrInvalidTransactionState)
	}

	return tx, nil
}
