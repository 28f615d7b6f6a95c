package domain

import "time"

// Event types
const (
	EventTypeInvoicePosted  = "invoice.posted"
	EventTypePaymentPosted  = "payment.posted"
	EventTypeAccountCreated = "account.created"
)

// Aggregate types
const (
	AggregateTypeInvoice = "invoice"
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// InvoicePostedEvent payload
type InvoicePostedEvent struct {
	InvoiceID  string `json:"invoice_id"`
	AccountID  string `json:"account_id"`
	GrandTotal string `json:"grand_total"`
	BalanceDue string `json:"balance_due"`
	Currency   string `json:"currency"`
	Date       string `json:"date"`
}

// PaymentPostedEvent payload
type PaymentPostedEvent struct {
	AccountID           string `json:"account_id"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	RemainingReceivable string `json:"remaining_receivable"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Currency  string `json:"currency"`
}
