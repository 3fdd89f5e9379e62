package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        string          `json:"id"`
	BuyerID   string          `json:"buyer_id"`
	SellerID  string          `json:"seller_id"`
	ProductID string          `json:"product_id,omitempty"`
	OrderID   string          `json:"order_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	Status    string          `json:"status"`
	ReceiptID string          `json:"receipt_id,omitempty"`
}

// ExecuteTransactionResponse is returned by the execute endpoint.
type ExecuteTransactionResponse struct {
	Success     bool                `json:"success"`
	Reason      string              `json:"reason"`
	Retryable   bool                `json:"retryable"`
	Transaction TransactionResponse `json:"transaction"`
}

// ExecuteTransactionFromResult converts an execution result to response.
func ExecuteTransactionFromResult(res *usecase.ExecuteTransactionResult) *ExecuteTransactionResponse {
	tx := res.Transaction

	return &ExecuteTransactionResponse{
		Success:   res.Outcome.Success,
		Reason:    string(res.Outcome.Reason),
		Retryable: res.Outcome.Retryable(),
		Transaction: TransactionResponse{
			ID:        tx.ID,
			BuyerID:   string(tx.BuyerID),
			SellerID:  string(tx.SellerID),
			ProductID: tx.ProductID,
			OrderID:   tx.OrderID,
			Amount:    tx.Amount,
			CreatedAt: tx.CreatedAt,
			Status:    string(tx.Status),
			ReceiptID: tx.ReceiptID,
		},
	}
}

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// WalletFromDomain converts domain wallet to response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:        w.ID,
		OwnerID:   string(w.OwnerID),
		Currency:  w.Currency,
		Balance:   w.Balance,
		Version:   w.Version,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

// SettlementResponse represents a settlement in API responses.
type SettlementResponse struct {
	ReceiptID      string          `json:"receipt_id"`
	TransactionID  string          `json:"transaction_id"`
	BuyerWalletID  string          `json:"buyer_wallet_id"`
	SellerWalletID string          `json:"seller_wallet_id"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SettlementFromDomain converts domain settlement to response.
func SettlementFromDomain(s *domain.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ReceiptID:      s.ID,
		TransactionID:  s.TransactionID,
		BuyerWalletID:  s.BuyerWalletID,
		SellerWalletID: s.SellerWalletID,
		Amount:         s.Amount,
		CreatedAt:      s.CreatedAt,
	}
}
