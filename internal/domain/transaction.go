package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TransactionIDPrefix is carried by every transaction id.
	TransactionIDPrefix = "t_"

	// ExpiryWindow is how long a transaction may wait for execution after creation.
	ExpiryWindow = 20 * 24 * time.Hour
)

// TransactionStatus is the execution state of a wallet transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusExecuted TransactionStatus = "executed"
	TransactionStatusExpired  TransactionStatus = "expired"
	TransactionStatusFailed   TransactionStatus = "failed"
)

// IsValid reports whether s is a known status.
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusExecuted, TransactionStatusExpired, TransactionStatusFailed:
		return true
	}
	return false
}

// PartyID identifies the wallet owner on either side of a transaction.
// An empty PartyID means the party is missing.
type PartyID string

// TransactionInput carries caller supplied fields for a new transaction.
type TransactionInput struct {
	PreAssignedID string
	BuyerID       PartyID
	SellerID      PartyID
	ProductID     string
	OrderID       string
	Amount        decimal.Decimal
}

// Transaction is a single request to move funds from buyer to seller.
//
// Status and receipt are only changed through the Mark* methods and are
// read under the same mutex, so a reader never observes a status without
// its matching receipt.
type Transaction struct {
	BuyerID   PartyID
	SellerID  PartyID
	ProductID string
	OrderID   string
	Amount    decimal.Decimal

	id        string
	createdAt time.Time

	mu        sync.RWMutex
	status    TransactionStatus
	receiptID string
}

// NewTransaction creates a pending transaction. The id is taken from
// input.PreAssignedID when present, otherwise generate is called once.
func NewTransaction(input TransactionInput, generate func() (string, error), createdAt time.Time) (*Transaction, error) {
	id, err := AssignTransactionID(input.PreAssignedID, generate)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		id:        id,
		BuyerID:   input.BuyerID,
		SellerID:  input.SellerID,
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		Amount:    input.Amount,
		createdAt: createdAt,
		status:    TransactionStatusPending,
	}, nil
}

// AssignTransactionID returns the permanent id for a transaction.
func AssignTransactionID(preAssignedID string, generate func() (string, error)) (string, error) {
	if preAssignedID != "" {
		if strings.HasPrefix(preAssignedID, TransactionIDPrefix) {
			return preAssignedID, nil
		}
		return TransactionIDPrefix + preAssignedID, nil
	}

	if generate == nil {
		return "", ErrMissingIDGenerator
	}

	generated, err := generate()
	if err != nil {
		return "", fmt.Errorf("generate transaction id: %w", err)
	}

	return TransactionIDPrefix + generated, nil
}

// TransactionState is the recorded state of a transaction, used to
// rebuild it after a restart.
type TransactionState struct {
	ID        string
	BuyerID   PartyID
	SellerID  PartyID
	ProductID string
	OrderID   string
	Amount    decimal.Decimal
	CreatedAt time.Time
	Status    TransactionStatus
	ReceiptID string
}

// RestoreTransaction rebuilds a transaction from recorded state.
func RestoreTransaction(state TransactionState) (*Transaction, error) {
	if state.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidTransactionState)
	}

	if !state.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransactionState, state.Status)
	}

	if state.CreatedAt.IsZero() {
		return nil, fmt.Errorf("%w: created_at is required", ErrInvalidTransactionState)
	}

	if (state.Status == TransactionStatusExecuted) != (state.ReceiptID != "") {
		return nil, fmt.Errorf("%w: receipt must be set only for executed transactions", ErrInvalidTransactionState)
	}

	id, err := AssignTransactionID(state.ID, nil)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		id:        id,
		BuyerID:   state.BuyerID,
		SellerID:  state.SellerID,
		ProductID: state.ProductID,
		OrderID:   state.OrderID,
		Amount:    state.Amount,
		createdAt: state.CreatedAt,
		status:    state.Status,
		receiptID: state.ReceiptID,
	}, nil
}

// ID returns the transaction id.
func (t *Transaction) ID() string {
	return t.id
}

// CreatedAt returns the construction time.
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// Status returns the current status.
func (t *Transaction) Status() TransactionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// ReceiptID returns the settlement receipt, empty unless executed.
func (t *Transaction) ReceiptID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.receiptID
}

// IsInvalid reports whether the transaction can never be executed.
func (t *Transaction) IsInvalid() bool {
	return t.BuyerID == "" || t.SellerID == "" || t.Amount.IsNegative()
}

// IsExecuted reports whether funds were already moved.
func (t *Transaction) IsExecuted() bool {
	return t.Status() == TransactionStatusExecuted
}

// IsExpired reports whether more than ExpiryWindow has passed since creation.
func (t *Transaction) IsExpired(now time.Time) bool {
	return now.Sub(t.createdAt) > ExpiryWindow
}

// MarkExecuted records a successful settlement.
func (t *Transaction) MarkExecuted(receiptID string) error {
	if receiptID == "" {
		return ErrEmptyReceipt
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.status {
	case TransactionStatusExecuted:
		return ErrTransactionAlreadyExecuted
	case TransactionStatusExpired:
		return ErrTransactionExpired
	}

	t.status = TransactionStatusExecuted
	t.receiptID = receiptID

	return nil
}

// MarkExpired moves the transaction to the expired status.
func (t *Transaction) MarkExpired() error {
	return t.markTerminal(TransactionStatusExpired)
}

// MarkFailed moves the transaction to the failed status.
func (t *Transaction) MarkFailed() error {
	return t.markTerminal(TransactionStatusFailed)
}

func (t *Transaction) markTerminal(status TransactionStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.status {
	case TransactionStatusExecuted:
		return ErrTransactionAlreadyExecuted
	case TransactionStatusExpired:
		if status != TransactionStatusExpired {
			return ErrTransactionExpired
		}
	}

	t.status = status

	return nil
}

// Snapshot returns a consistent copy of the transaction fields.
func (t *Transaction) Snapshot() TransactionState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return TransactionState{
		ID:        t.id,
		BuyerID:   t.BuyerID,
		SellerID:  t.SellerID,
		ProductID: t.ProductID,
		OrderID:   t.OrderID,
		Amount:    t.Amount,
		CreatedAt: t.createdAt,
		Status:    t.status,
		ReceiptID: t.receiptID,
	}
}
