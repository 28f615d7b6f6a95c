package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// LineComputationResponse is the monetary breakdown of one line,
// rounded for display.
type LineComputationResponse struct {
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountedBase decimal.Decimal `json:"discounted_base"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	CessAmount     decimal.Decimal `json:"cess_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// LineComputationFromDomain converts a computed line to its rounded
// response form.
func LineComputationFromDomain(lc domain.LineComputation) LineComputationResponse {
	rounded := lc.Rounded()
	return LineComputationResponse{
		GrossAmount:    rounded.GrossAmount.Amount,
		DiscountedBase: rounded.DiscountedBase.Amount,
		TaxAmount:      rounded.TaxAmount.Amount,
		CessAmount:     rounded.CessAmount.Amount,
		LineTotal:      rounded.LineTotal.Amount,
	}
}

// TotalsResponse is the invoice-level aggregate breakdown.
type TotalsResponse struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	CessTotal  decimal.Decimal `json:"cess_total"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Currency   string          `json:"currency"`
}

// TotalsFromDomain converts domain totals to a response.
func TotalsFromDomain(t domain.InvoiceTotals) TotalsResponse {
	return TotalsResponse{
		Subtotal:   t.Subtotal.Amount,
		TaxTotal:   t.TaxTotal.Amount,
		CessTotal:  t.CessTotal.Amount,
		GrandTotal: t.GrandTotal.Amount,
		Currency:   t.GrandTotal.Currency,
	}
}

// PriceInvoiceResponse is the result of pricing without posting.
type PriceInvoiceResponse struct {
	Lines  []LineComputationResponse `json:"lines"`
	Totals TotalsResponse            `json:"totals"`
}

// PriceInvoiceFromDomain converts a pricing result to a response.
func PriceInvoiceFromDomain(result *usecase.PriceInvoiceResult) *PriceInvoiceResponse {
	lines := make([]LineComputationResponse, len(result.Lines))
	for i, lc := range result.Lines {
		lines[i] = LineComputationFromDomain(lc)
	}
	return &PriceInvoiceResponse{
		Lines:  lines,
		Totals: TotalsFromDomain(result.Totals),
	}
}

// InvoiceResponse represents a posted invoice in API responses.
type InvoiceResponse struct {
	ID            string                    `json:"id"`
	AccountID     string                    `json:"account_id"`
	Date          time.Time                 `json:"date"`
	PaymentMethod string                    `json:"payment_method"`
	Lines         []LineComputationResponse `json:"lines"`
	Totals        TotalsResponse            `json:"totals"`
	AmountPaid    decimal.Decimal           `json:"amount_paid"`
	BalanceDue    decimal.Decimal           `json:"balance_due"`
	Status        string                    `json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// InvoiceFromDomain converts a domain invoice to a response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	lines := make([]LineComputationResponse, len(inv.Lines))
	for i, lc := range inv.Lines {
		lines[i] = LineComputationFromDomain(lc)
	}
	return &InvoiceResponse{
		ID:            inv.ID,
		AccountID:     inv.AccountID,
		Date:          inv.Date,
		PaymentMethod: string(inv.PaymentMethod),
		Lines:         lines,
		Totals:        TotalsFromDomain(inv.Totals),
		AmountPaid:    inv.AmountPaid.Amount,
		BalanceDue:    inv.BalanceDue.Amount,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt,
	}
}

// InvoicesFromDomain converts domain invoices to responses.
func InvoicesFromDomain(invoices []*domain.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = InvoiceFromDomain(inv)
	}
	return result
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Kind              string          `json:"kind"`
	Currency          string          `json:"currency"`
	TotalOrders       int64           `json:"total_orders"`
	CompletedOrders   int64           `json:"completed_orders"`
	TotalValue        decimal.Decimal `json:"total_value"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	LastOrderDate     *time.Time      `json:"last_order_date,omitempty"`
	Version           int64           `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		Name:              a.Name,
		Kind:              string(a.Kind),
		Currency:          a.Currency,
		TotalOrders:       a.TotalOrders,
		CompletedOrders:   a.CompletedOrders,
		TotalValue:        a.TotalValue.Amount,
		AverageOrderValue: a.AverageOrderValue.Amount,
		LastOrderDate:     a.LastOrderDate,
		Version:           a.Version,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// ListInvoicesResponse wraps an invoice listing.
type ListInvoicesResponse struct {
	Invoices []*InvoiceResponse `json:"invoices"`
	Total    int64              `json:"total"`
}

// ReceivableResponse represents an outstanding receivable.
type ReceivableResponse struct {
	AccountID         string          `json:"account_id"`
	TotalReceivable   decimal.Decimal `json:"total_receivable"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	Currency          string          `json:"currency"`
	InvoiceCount      int64           `json:"invoice_count"`
	OldestInvoiceDate time.Time       `json:"oldest_invoice_date"`
	DaysPastDue       int             `json:"days_past_due"`
	Status            string          `json:"status"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ReceivableFromDomain converts a domain receivable to a response.
func ReceivableFromDomain(r *domain.Receivable) *ReceivableResponse {
	return &ReceivableResponse{
		AccountID:         r.AccountID,
		TotalReceivable:   r.TotalReceivable.Amount,
		OverdueAmount:     r.OverdueAmount.Amount,
		Currency:          r.TotalReceivable.Currency,
		InvoiceCount:      r.InvoiceCount,
		OldestInvoiceDate: r.OldestInvoiceDate,
		DaysPastDue:       r.DaysPastDue,
		Status:            string(r.Status),
		UpdatedAt:         r.UpdatedAt,
	}
}

// ReceivablesFromDomain converts domain receivables to responses.
func ReceivablesFromDomain(receivables []*domain.Receivable) []*ReceivableResponse {
	result := make([]*ReceivableResponse, len(receivables))
	for i, r := range receivables {
		result[i] = ReceivableFromDomain(r)
	}
	return result
}

// AgingResponse is the date-based aging breakdown for an account.
type AgingResponse struct {
	Current      decimal.Decimal `json:"current"`
	Bucket31to60 decimal.Decimal `json:"bucket_31_60"`
	Bucket60Plus decimal.Decimal `json:"bucket_60_plus"`
	DaysPastDue  int             `json:"days_past_due"`
	Status       string          `json:"status"`
}

// AgingFromDomain converts a domain aging report to a response.
func AgingFromDomain(report domain.AgingReport) AgingResponse {
	return AgingResponse{
		Current:      report.Current.Amount,
		Bucket31to60: report.Bucket31to60.Amount,
		Bucket60Plus: report.Bucket60Plus.Amount,
		DaysPastDue:  report.DaysPastDue,
		Status:       string(report.Status),
	}
}

// AccountSummaryResponse bundles account, receivable and aging.
type AccountSummaryResponse struct {
	Account    *AccountResponse    `json:"account"`
	Receivable *ReceivableResponse `json:"receivable,omitempty"`
	Aging      AgingResponse       `json:"aging"`
}

// AccountSummaryFromDomain converts a use case summary to a response.
func AccountSummaryFromDomain(s *usecase.AccountSummary) *AccountSummaryResponse {
	resp := &AccountSummaryResponse{
		Account: AccountFromDomain(s.Account),
		Aging:   AgingFromDomain(s.Aging),
	}
	if s.Receivable != nil {
		resp.Receivable = ReceivableFromDomain(s.Receivable)
	}
	return resp
}

// PostInvoiceResponse carries the posted invoice and updated records.
type PostInvoiceResponse struct {
	Invoice    *InvoiceResponse    `json:"invoice"`
	Account    *AccountResponse    `json:"account"`
	Receivable *ReceivableResponse `json:"receivable,omitempty"`
}

// PostInvoiceFromDomain converts a posting result to a response.
func PostInvoiceFromDomain(result *usecase.PostInvoiceResult) *PostInvoiceResponse {
	resp := &PostInvoiceResponse{
		Invoice: InvoiceFromDomain(result.Invoice),
		Account: AccountFromDomain(result.Account),
	}
	if result.Receivable != nil {
		resp.Receivable = ReceivableFromDomain(result.Receivable)
	}
	return resp
}

// PostPaymentResponse carries the receivable state after a payment.
type PostPaymentResponse struct {
	Settled    bool                `json:"settled"`
	Receivable *ReceivableResponse `json:"receivable,omitempty"`
}

// PostPaymentFromDomain converts a payment result to a response.
func PostPaymentFromDomain(result *usecase.PostPaymentResult) *PostPaymentResponse {
	resp := &PostPaymentResponse{Settled: result.Settled}
	if result.Receivable != nil {
		resp.Receivable = ReceivableFromDomain(result.Receivable)
	}
	return resp
}

// AccountCheckResponse is one account's consistency verdict.
type AccountCheckResponse struct {
	AccountID       string          `json:"account_id"`
	Recorded        decimal.Decimal `json:"recorded"`
	FromOpenBalance decimal.Decimal `json:"from_open_balance"`
	Consistent      bool            `json:"consistent"`
}

// ConsistencyResponse reports the book-wide consistency check.
type ConsistencyResponse struct {
	Consistent bool                   `json:"consistent"`
	Accounts   []AccountCheckResponse `json:"accounts"`
	CheckedAt  time.Time              `json:"checked_at"`
}

// ConsistencyFromDomain converts a consistency result to a response.
func ConsistencyFromDomain(result *usecase.ConsistencyResult) *ConsistencyResponse {
	checks := make([]AccountCheckResponse, len(result.Accounts))
	for i, c := range result.Accounts {
		checks[i] = AccountCheckResponse{
			AccountID:       c.AccountID,
			Recorded:        c.Recorded.Amount,
			FromOpenBalance: c.FromOpenBalance.Amount,
			Consistent:      c.Consistent,
		}
	}
	return &ConsistencyResponse{
		Consistent: result.Consistent,
		Accounts:   checks,
		CheckedAt:  result.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
