package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement records a completed funds movement for a transaction.
// ID is the receipt handed back to the executor.
type Settlement struct {
	CreatedAt      time.Time
	ID             string
	TransactionID  string
	BuyerWalletID  string
	SellerWalletID string
	Amount         decimal.Decimal
}

// Validate validates the settlement before it is recorded.
func (s *Settlement) Validate() error {
	if s.BuyerWalletID == s.SellerWalletID {
		return ErrSameWallet
	}

	if s.Amount.IsNegative() {
		return ErrInvalidAmount
	}

	return nil
}
