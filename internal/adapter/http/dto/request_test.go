package dto

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletsettle/internal/domain"
	"github.com/iho/walletsettle/internal/usecase"
)

func TestExecuteTransactionRequest_ToUseCaseInput(t *testing.T) {
	createdAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		request     *ExecuteTransactionRequest
		want        usecase.ExecuteTransactionInput
		expectError bool
	}{
		{
			name: "valid request",
			request: &ExecuteTransactionRequest{
				ID:        "000001",
				BuyerID:   "buyer",
				SellerID:  "seller",
				ProductID: "p-1",
				OrderID:   "o-1",
				Amount:    "12.34",
				CreatedAt: &createdAt,
			},
			want: usecase.ExecuteTransactionInput{
				CreatedAt:     &createdAt,
				PreAssignedID: "000001",
				BuyerID:       "buyer",
				SellerID:      "seller",
				ProductID:     "p-1",
				OrderID:       "o-1",
				Amount:        decimal.RequireFromString("12.34"),
			},
		},
		{
			name: "recorded state",
			request: &ExecuteTransactionRequest{
				ID:        "t_1",
				BuyerID:   "buyer",
				SellerID:  "seller",
				Amount:    "1",
				Status:    "executed",
				ReceiptID: "r-1",
			},
			want: usecase.ExecuteTransactionInput{
				PreAssignedID: "t_1",
				BuyerID:       "buyer",
				SellerID:      "seller",
				Amount:        decimal.RequireFromString("1"),
				Status:        domain.TransactionStatusExecuted,
				ReceiptID:     "r-1",
			},
		},
		{
			name:        "invalid amount",
			request:     &ExecuteTransactionRequest{BuyerID: "b", SellerID: "s", Amount: "abc"},
			expectError: true,
		},
		{
			name:        "missing amount",
			request:     &ExecuteTransactionRequest{BuyerID: "b", SellerID: "s"},
			expectError: true,
		},
		{
			name:        "id too long",
			request:     &ExecuteTransactionRequest{ID: strings.Repeat("x", domain.MaxTransactionIDLength-1), BuyerID: "b", SellerID: "s", Amount: "1"},
			expectError: true,
		},
		{
			name:        "amount finer than storage scale",
			request:     &ExecuteTransactionRequest{BuyerID: "b", SellerID: "s", Amount: "0.0000000000000000001"},
			expectError: true,
		},
		{
			name:        "unknown status",
			request:     &ExecuteTransactionRequest{BuyerID: "b", SellerID: "s", Amount: "1", Status: "done"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput()
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Amount.Equal(got.Amount))
			got.Amount = tt.want.Amount
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteTransactionRequest_LimitsMatchStorage(t *testing.T) {
	longest := strings.Repeat("x", domain.MaxTransactionIDLength-len(domain.TransactionIDPrefix))
	req := &ExecuteTransactionRequest{ID: longest, BuyerID: "b", SellerID: "s", Amount: "0.000000000000000001"}

	got, err := req.ToUseCaseInput()

	require.NoError(t, err)
	assert.Equal(t, longest, got.PreAssignedID)
	assert.Equal(t, "0.000000000000000001", got.Amount.String())

	req.Amount = "1.500000000000000000000"
	_, err = req.ToUseCaseInput()
	require.NoError(t, err, "trailing zeros past the storage scale lose nothing")
}

func TestExecuteTransactionRequest_NegativeAmountPassesThrough(t *testing.T) {
	req := &ExecuteTransactionRequest{BuyerID: "b", SellerID: "s", Amount: "-5"}

	got, err := req.ToUseCaseInput()

	require.NoError(t, err, "negative amounts are rejected by the executor, not the decoder")
	assert.True(t, got.Amount.IsNegative())
}

func TestCreateWalletRequest_ToUseCaseInput(t *testing.T) {
	got, err := (&CreateWalletRequest{OwnerID: "buyer", Currency: "USD"}).ToUseCaseInput()
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, domain.PartyID("buyer"), got.OwnerID)

	got, err = (&CreateWalletRequest{OwnerID: "buyer", Currency: "USD", Balance: "250.50"}).ToUseCaseInput()
	require.NoError(t, err)
	assert.Equal(t, "250.5", got.Balance.String())

	_, err = (&CreateWalletRequest{OwnerID: "buyer", Currency: "USD", Balance: "lots"}).ToUseCaseInput()
	require.Error(t, err)
}
