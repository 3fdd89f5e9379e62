package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/walletsettle/internal/adapter/http/dto"
	"github.com/iho/walletsettle/internal/usecase"
)

// TransactionService executes wallet transactions.
type TransactionService interface {
	ExecuteTransaction(ctx context.Context, input usecase.ExecuteTransactionInput) (*usecase.ExecuteTransactionResult, error)
}

// TransactionHandler handles transaction execution requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Execute runs one execution attempt for a transaction.
//
// 200 executed (now or earlier), 409 another attempt holds the lock,
// 422 expired or the funds mover refused, 400 invalid transaction.
func (h *TransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req dto.ExecuteTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
		return
	}

	result, err := h.transactionUC.ExecuteTransaction(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to execute transaction", err.Error())
		return
	}

	status := outcomeStatus(result.Outcome)
	if status == http.StatusConflict {
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, status, dto.ExecuteTransactionFromResult(result))
}
