package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "walletsettle-cli",
		Short:         "walletsettle CLI tool",
		Long:          `A command line interface for executing wallet transactions against the walletsettle API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the walletsettle API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(executeCmd(), walletCmd(), settlementCmd())

	return rootCmd
}

func executeCmd() *cobra.Command {
	var req struct {
		ID        string `json:"id,omitempty"`
		BuyerID   string `json:"buyer_id"`
		SellerID  string `json:"seller_id"`
		ProductID string `json:"product_id,omitempty"`
		OrderID   string `json:"order_id,omitempty"`
		Amount    string `json:"amount"`
	}
	var idempotencyKey string

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a wallet transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := map[string]string{}
			if idempotencyKey != "" {
				headers["Idempotency-Key"] = idempotencyKey
			}

			status, body, err := doRequest(http.MethodPost, "/api/v1/transactions/execute", req, headers)
			if err != nil {
				return err
			}

			// 409 and 422 carry an outcome, not an error body.
			if status != http.StatusOK && status != http.StatusConflict && status != http.StatusUnprocessableEntity {
				return apiError(status, body)
			}

			var result struct {
				Success     bool   `json:"success"`
				Reason      string `json:"reason"`
				Retryable   bool   `json:"retryable"`
				Transaction struct {
					ID        string `json:"id"`
					Status    string `json:"status"`
					ReceiptID string `json:"receipt_id"`
				} `json:"transaction"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transaction: %s\n", result.Transaction.ID)
			fmt.Fprintf(out, "Status:      %s\n", result.Transaction.Status)
			fmt.Fprintf(out, "Reason:      %s\n", result.Reason)
			if result.Transaction.ReceiptID != "" {
				fmt.Fprintf(out, "Receipt:     %s\n", result.Transaction.ReceiptID)
			}
			if !result.Success {
				if result.Retryable {
					return fmt.Errorf("transaction not executed (%s), retry later", result.Reason)
				}
				return fmt.Errorf("transaction not executed (%s)", result.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&req.ID, "id", "", "Pre-assigned transaction ID")
	cmd.Flags().StringVar(&req.BuyerID, "buyer", "", "Buyer party ID")
	cmd.Flags().StringVar(&req.SellerID, "seller", "", "Seller party ID")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "Amount to move")
	cmd.Flags().StringVar(&req.ProductID, "product", "", "Product ID")
	cmd.Flags().StringVar(&req.OrderID, "order", "", "Order ID")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key sent with the request")
	_ = cmd.MarkFlagRequired("buyer")
	_ = cmd.MarkFlagRequired("seller")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet operations",
	}

	var req struct {
		OwnerID  string `json:"owner_id"`
		Currency string `json:"currency"`
		Balance  string `json:"balance,omitempty"`
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.StatusCreated)(doRequest(http.MethodPost, "/api/v1/wallets/", req, nil))
		},
	}
	createCmd.Flags().StringVar(&req.OwnerID, "owner", "", "Owner party ID")
	createCmd.Flags().StringVar(&req.Currency, "currency", "", "ISO 4217 currency code")
	createCmd.Flags().StringVar(&req.Balance, "balance", "", "Opening balance")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("currency")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a wallet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.StatusOK)(doRequest(http.MethodGet, "/api/v1/wallets/"+url.PathEscape(args[0]), nil, nil))
		},
	}

	cmd.AddCommand(createCmd, getCmd)

	return cmd
}

func settlementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settlement operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <transaction-id>",
		Short: "Show the settlement recorded for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.StatusOK)(doRequest(http.MethodGet, "/api/v1/settlements/"+url.PathEscape(args[0]), nil, nil))
		},
	}

	cmd.AddCommand(getCmd)

	return cmd
}

func doRequest(method, path string, payload any, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func printResponse(out io.Writer, want int) func(int, []byte, error) error {
	return func(status int, body []byte, err error) error {
		if err != nil {
			return err
		}
		if status != want {
			return apiError(status, body)
		}

		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}

		return printJSON(out, v)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func apiError(status int, body []byte) error {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		if e.Message != "" {
			return fmt.Errorf("request failed (status %d): %s: %s", status, e.Error, e.Message)
		}
		return fmt.Errorf("request failed (status %d): %s", status, e.Error)
	}

	return fmt.Errorf("request failed (status %d): %s", status, truncate(strings.TrimSpace(string(body)), 200))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
