package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/infrastructure/metrics"
)

// TransactionExecutor runs the exactly-once execution protocol for wallet
// transactions: validate, short-circuit, lock, expiry check, move money.
type TransactionExecutor struct {
	lock    DistributedLock
	mover   FundsMover
	clock   Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewTransactionExecutor creates a new TransactionExecutor.
func NewTransactionExecutor(
	lock DistributedLock,
	mover FundsMover,
	clock Clock,
	logger zerolog.Logger,
	metrics *metrics.Metrics,
) *TransactionExecutor {
	if clock == nil {
		clock = SystemClock{}
	}

	return &TransactionExecutor{
		lock:    lock,
		mover:   mover,
		clock:   clock,
		logger:  logger.With().Str("component", "transaction_executor").Logger(),
		metrics: metrics,
	}
}

// Execute moves the transaction's funds at most once.
//
// An invalid transaction yields domain.ErrInvalidTransaction and is never
// locked. Every other result is an Outcome; errors from the lock service or
// the funds mover are returned after the lock has been released.
func (e *TransactionExecutor) Execute(ctx context.Context, tx *domain.Transaction) (domain.Outcome, error) {
	start := time.Now()

	if tx.IsInvalid() {
		e.recordError("validate")
		return domain.Outcome{Status: tx.Status()}, fmt.Errorf("%w: %s", domain.ErrInvalidTransaction, invalidReason(tx))
	}

	if tx.IsExecuted() {
		return e.finish(start, tx, alreadyExecuted(tx)), nil
	}

	id := tx.ID()
	log := e.logger.With().Str("transaction_id", id).Logger()

	acquired, err := e.lock.Lock(ctx, id)
	if err != nil {
		e.recordError("lock")
		return domain.Outcome{Status: tx.Status()}, fmt.Errorf("acquire lock for transaction %s: %w", id, err)
	}

	if !acquired {
		if e.metrics != nil {
			e.metrics.LockContention.Inc()
		}
		log.Debug().Msg("transaction lock held elsewhere")

		return e.finish(start, tx, domain.Outcome{
			Reason: domain.ReasonLockNotAcquired,
			Status: tx.Status(),
		}), nil
	}

	// Nothing past this point is cancellable: once the lock is held the
	// attempt runs to completion and the lock is always released.
	lockedCtx := context.WithoutCancel(ctx)
	defer func() {
		if unlockErr := e.lock.Unlock(lockedCtx, id); unlockErr != nil {
			e.recordError("unlock")
			log.Error().Err(unlockErr).Msg("failed to release transaction lock")
		}
	}()

	outcome, err := e.executeLocked(lockedCtx, tx, log)
	if err != nil {
		e.recordError("move_money")
		return outcome, err
	}

	return e.finish(start, tx, outcome), nil
}

func (e *TransactionExecutor) executeLocked(ctx context.Context, tx *domain.Transaction, log zerolog.Logger) (domain.Outcome, error) {
	// Another holder of this same *Transaction may have finished while we
	// waited for the lock.
	if tx.IsExecuted() {
		return alreadyExecuted(tx), nil
	}

	if tx.IsExpired(e.clock.Now()) {
		if err := tx.MarkExpired(); err != nil {
			return domain.Outcome{Status: tx.Status()}, err
		}
		log.Warn().Time("created_at", tx.CreatedAt()).Msg("transaction expired before execution")

		return domain.Outcome{
			Reason: domain.ReasonExpired,
			Status: domain.TransactionStatusExpired,
		}, nil
	}

	receiptID, err := e.mover.MoveMoney(ctx, tx.ID(), tx.BuyerID, tx.SellerID, tx.Amount)
	if err != nil {
		return domain.Outcome{Status: tx.Status()}, fmt.Errorf("move money for transaction %s: %w", tx.ID(), err)
	}

	if receiptID == "" {
		if err := tx.MarkFailed(); err != nil {
			return domain.Outcome{Status: tx.Status()}, err
		}
		log.Warn().Msg("funds mover returned no receipt")

		return domain.Outcome{
			Reason: domain.ReasonSettlementFailed,
			Status: domain.TransactionStatusFailed,
		}, nil
	}

	if err := tx.MarkExecuted(receiptID); err != nil {
		return domain.Outcome{Status: tx.Status()}, err
	}

	if e.metrics != nil {
		e.metrics.SettlementAmount.Observe(tx.Amount.InexactFloat64())
	}
	log.Info().Str("receipt_id", receiptID).Msg("transaction executed")

	return domain.Outcome{
		Success:   true,
		Reason:    domain.ReasonExecuted,
		Status:    domain.TransactionStatusExecuted,
		ReceiptID: receiptID,
	}, nil
}

func (e *TransactionExecutor) finish(start time.Time, tx *domain.Transaction, outcome domain.Outcome) domain.Outcome {
	if e.metrics != nil {
		e.metrics.Executions.WithLabelValues(string(outcome.Reason)).Inc()
		e.metrics.ExecuteDuration.Observe(time.Since(start).Seconds())
	}

	e.logger.Debug().
		Str("transaction_id", tx.ID()).
		Str("reason", string(outcome.Reason)).
		Str("status", string(outcome.Status)).
		Bool("success", outcome.Success).
		Msg("execute finished")

	return outcome
}

func (e *TransactionExecutor) recordError(stage string) {
	if e.metrics != nil {
		e.metrics.ExecutionErrors.WithLabelValues(stage).Inc()
	}
}

func alreadyExecuted(tx *domain.Transaction) domain.Outcome {
	state := tx.Snapshot()

	return domain.Outcome{
		Success:   true,
		Reason:    domain.ReasonAlreadyExecuted,
		Status:    state.Status,
		ReceiptID: state.ReceiptID,
	}
}

func invalidReason(tx *domain.Transaction) string {
	switch {
	case tx.BuyerID == "":
		return "buyer is missing"
	case tx.SellerID == "":
		return "seller is missing"
	default:
		return "amount is negative"
	}
}
