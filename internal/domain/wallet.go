package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the balance of a single party in one currency.
type Wallet struct {
	ID        string
	OwnerID   PartyID
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks if the wallet can be debited by amount.
func (w *Wallet) ValidateDebit(amount decimal.Decimal) error {
	if w.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (w *Wallet) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (w *Wallet) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(amount)
}
