package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/usecase"
)

// ExecuteTransactionRequest represents a request to execute a wallet transaction.
//
// Status and ReceiptID are optional and carry state recorded by an earlier
// attempt, so a transaction already executed elsewhere short-circuits.
type ExecuteTransactionRequest struct {
	ID        string     `json:"id,omitempty"`
	BuyerID   string     `json:"buyer_id"`
	SellerID  string     `json:"seller_id"`
	ProductID string     `json:"product_id,omitempty"`
	OrderID   string     `json:"order_id,omitempty"`
	Amount    string     `json:"amount"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Status    string     `json:"status,omitempty"`
	ReceiptID string     `json:"receipt_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *ExecuteTransactionRequest) ToUseCaseInput() (usecase.ExecuteTransactionInput, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return usecase.ExecuteTransactionInput{}, err
	}

	if err := domain.ValidateTransactionID(r.ID); err != nil {
		return usecase.ExecuteTransactionInput{}, err
	}

	status := domain.TransactionStatus(r.Status)
	if status != "" && !status.IsValid() {
		return usecase.ExecuteTransactionInput{}, fmt.Errorf("unknown status %q", r.Status)
	}

	return usecase.ExecuteTransactionInput{
		CreatedAt:     r.CreatedAt,
		PreAssignedID: r.ID,
		BuyerID:       domain.PartyID(r.BuyerID),
		SellerID:      domain.PartyID(r.SellerID),
		ProductID:     r.ProductID,
		OrderID:       r.OrderID,
		Amount:        amount,
		Status:        status,
		ReceiptID:     r.ReceiptID,
	}, nil
}

// CreateWalletRequest represents a request to open a wallet.
type CreateWalletRequest struct {
	OwnerID  string `json:"owner_id"`
	Currency string `json:"currency"`
	Balance  string `json:"balance,omitempty"`
}

// ToUseCaseInput converts to use case input. An omitted balance opens an empty wallet.
func (r *CreateWalletRequest) ToUseCaseInput() (usecase.CreateWalletInput, error) {
	balance := decimal.Zero
	if r.Balance != "" {
		var err error
		if balance, err = parseAmount(r.Balance); err != nil {
			return usecase.CreateWalletInput{}, err
		}
	}

	return usecase.CreateWalletInput{
		OwnerID:  domain.PartyID(r.OwnerID),
		Currency: r.Currency,
		Balance:  balance,
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("amount is required")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if err := domain.ValidateAmountScale(amount); err != nil {
		return decimal.Decimal{}, err
	}

	return amount, nil
}
