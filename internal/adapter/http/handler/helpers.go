package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/walletsettle/internal/adapter/http/dto"
	"github.com/iho/walletsettle/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrWalletNotFound),
		errors.Is(err, domain.ErrSettlementNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransaction),
		errors.Is(err, domain.ErrInvalidTransactionState),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidWalletOwner),
		errors.Is(err, domain.ErrInvalidCurrencyCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWalletExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// outcomeStatus maps an execution outcome to an HTTP status code.
func outcomeStatus(outcome domain.Outcome) int {
	switch {
	case outcome.Success:
		return http.StatusOK
	case outcome.Reason == domain.ReasonLockNotAcquired:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
