package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxPartyIDLength       = 128
	MaxTransactionIDLength = 160
	MaxAmountScale         = 18
	MaxAmount              = "1000000000000" // 1 trillion
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
}

// ValidateWalletOwner validates a wallet owner id
func ValidateWalletOwner(owner PartyID) error {
	trimmed := strings.TrimSpace(string(owner))

	if trimmed == "" {
		return fmt.Errorf("%w: owner cannot be empty", ErrInvalidWalletOwner)
	}

	if len(trimmed) > MaxPartyIDLength {
		return fmt.Errorf("%w: owner exceeds %d characters", ErrInvalidWalletOwner, MaxPartyIDLength)
	}

	return nil
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	currency = strings.ToUpper(strings.TrimSpace(currency))

	if !validCurrencies[currency] {
		return fmt.Errorf("%w: %s is not a valid ISO 4217 currency code", ErrInvalidCurrencyCode, currency)
	}

	return nil
}

// ValidateBalance validates an opening wallet balance
func ValidateBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}

	return nil
}

// ValidateTransactionID checks that a pre-assigned id fits once prefixed.
func ValidateTransactionID(preAssignedID string) error {
	length := len(preAssignedID)
	if !strings.HasPrefix(preAssignedID, TransactionIDPrefix) {
		length += len(TransactionIDPrefix)
	}

	if length > MaxTransactionIDLength {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidTransaction, MaxTransactionIDLength)
	}

	return nil
}

// ValidateAmountScale rejects amounts with more than MaxAmountScale decimal places.
func ValidateAmountScale(amount decimal.Decimal) error {
	if !amount.Truncate(MaxAmountScale).Equal(amount) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, MaxAmountScale)
	}

	return nil
}
