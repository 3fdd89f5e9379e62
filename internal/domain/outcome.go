package domain

// OutcomeReason explains why Execute succeeded or failed.
type OutcomeReason string

const (
	ReasonExecuted         OutcomeReason = "executed"
	ReasonAlreadyExecuted  OutcomeReason = "already_executed"
	ReasonLockNotAcquired  OutcomeReason = "lock_not_acquired"
	ReasonExpired          OutcomeReason = "expired"
	ReasonSettlementFailed OutcomeReason = "settlement_failed"
)

// Outcome is the operational result of an execution attempt.
type Outcome struct {
	Success   bool
	Reason    OutcomeReason
	Status    TransactionStatus
	ReceiptID string
}

// Retryable reports whether invoking Execute again may succeed.
func (o Outcome) Retryable() bool {
	return o.Reason == ReasonLockNotAcquired || o.Reason == ReasonSettlementFailed
}

// Terminal reports whether the transaction reached a final status that
// no further execution can change.
func (o Outcome) Terminal() bool {
	return o.Status == TransactionStatusExecuted || o.Status == TransactionStatusExpired
}
