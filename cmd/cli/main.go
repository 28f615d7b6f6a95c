package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bizledger-cli",
		Short: "BizLedger CLI tool",
		Long:  `A command line interface for interacting with the BizLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BizLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var accountName, accountKind, accountCurrency string
	createAccountCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a trading account",
		Run: func(cmd *cobra.Command, args []string) {
			createAccount(accountName, accountKind, accountCurrency)
		},
	}
	createAccountCmd.Flags().StringVar(&accountName, "name", "", "Account name")
	createAccountCmd.Flags().StringVar(&accountKind, "kind", "customer", "Account kind (customer or supplier)")
	createAccountCmd.Flags().StringVar(&accountCurrency, "currency", "INR", "Account currency")
	createAccountCmd.MarkFlagRequired("name")

	summaryCmd := &cobra.Command{
		Use:   "summary <account-id>",
		Short: "Show account with receivable and aging",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/summary")
		},
	}

	agingCmd := &cobra.Command{
		Use:   "aging <account-id>",
		Short: "Show the account's aging buckets",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/aging")
		},
	}

	accountCmd.AddCommand(createAccountCmd, summaryCmd, agingCmd)
	rootCmd.AddCommand(accountCmd)

	// Invoice commands
	invoiceCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Invoice operations",
	}

	var itemsFile string
	priceCmd := &cobra.Command{
		Use:   "price",
		Short: "Price an invoice without posting it",
		Run: func(cmd *cobra.Command, args []string) {
			postFromFile("/api/v1/invoices/price", itemsFile)
		},
	}
	priceCmd.Flags().StringVar(&itemsFile, "file", "", "JSON file with the invoice items")
	priceCmd.MarkFlagRequired("file")

	var invoiceFile string
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post an invoice to the ledger",
		Run: func(cmd *cobra.Command, args []string) {
			postFromFile("/api/v1/invoices", invoiceFile)
		},
	}
	postCmd.Flags().StringVar(&invoiceFile, "file", "", "JSON file with the invoice request")
	postCmd.MarkFlagRequired("file")

	invoiceCmd.AddCommand(priceCmd, postCmd)
	rootCmd.AddCommand(invoiceCmd)

	// Payment commands
	var paymentAmount, paymentCurrency string
	paymentCmd := &cobra.Command{
		Use:   "payment <account-id>",
		Short: "Post a payment against an account's open invoices",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			postPayment(args[0], paymentAmount, paymentCurrency)
		},
	}
	paymentCmd.Flags().StringVar(&paymentAmount, "amount", "", "Payment amount")
	paymentCmd.Flags().StringVar(&paymentCurrency, "currency", "INR", "Payment currency")
	paymentCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(paymentCmd)

	// Book commands
	bookCmd := &cobra.Command{
		Use:   "book",
		Short: "Book-wide operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check book consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	receivablesCmd := &cobra.Command{
		Use:   "receivables",
		Short: "List receivables, largest first",
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/receivables")
		},
	}

	bookCmd.AddCommand(consistencyCmd, receivablesCmd)
	rootCmd.AddCommand(bookCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createAccount(name, kind, currency string) {
	payload := map[string]string{
		"name":     name,
		"kind":     kind,
		"currency": currency,
	}
	postJSON("/api/v1/accounts", payload)
}

func postPayment(accountID, amount, currency string) {
	payload := map[string]string{
		"amount":   amount,
		"currency": currency,
	}
	postJSON("/api/v1/accounts/"+accountID+"/payments", payload)
}

func postFromFile(path, file string) {
	raw, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", file, err)
		os.Exit(1)
	}
	doRequest(http.MethodPost, path, raw)
}

func postJSON(path string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}
	doRequest(http.MethodPost, path, raw)
}

func getJSON(path string) {
	doRequest(http.MethodGet, path, nil)
}

func doRequest(method, path string, body []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	fmt.Println(prettyJSON(respBody))
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/book/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, prettyJSON(body))
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n%s\n", prettyJSON(body))
}

// prettyJSON re-indents a JSON body for terminal output. Non-JSON
// bodies come back unchanged.
func prettyJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
