package domain

import "errors"

var (
	// Transaction errors
	ErrInvalidTransaction         = errors.New("invalid transaction")
	ErrInvalidTransactionState    = errors.New("invalid transaction state")
	ErrTransactionAlreadyExecuted = errors.New("transaction already executed")
	ErrTransactionExpired         = errors.New("transaction expired")
	ErrEmptyReceipt               = errors.New("settlement receipt is empty")
	ErrMissingIDGenerator         = errors.New("transaction id generator is not configured")

	// Wallet errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists for owner")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrSameWallet          = errors.New("buyer and seller must be different wallets")
	ErrCurrencyMismatch    = errors.New("cannot settle between different currencies")
	ErrSettlementNotFound  = errors.New("settlement not found")
	ErrSettlementExists    = errors.New("settlement already recorded for transaction")
	ErrInvalidWalletOwner  = errors.New("wallet owner is required")
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
)
