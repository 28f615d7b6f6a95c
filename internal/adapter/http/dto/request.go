package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
)

// DiscountRequest is an optional per-line discount.
type DiscountRequest struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// CessRequest is an optional per-line cess levy.
type CessRequest struct {
	Kind          string          `json:"kind"`
	RatePercent   decimal.Decimal `json:"rate_percent"`
	AmountPerUnit decimal.Decimal `json:"amount_per_unit"`
}

// LineItemRequest represents one sale line in a pricing or posting
// request. All monetary fields are decimal strings; floats lose cents.
type LineItemRequest struct {
	ProductID      string           `json:"product_id"`
	Quantity       int64            `json:"quantity"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	Discount       *DiscountRequest `json:"discount,omitempty"`
	TaxRatePercent decimal.Decimal  `json:"tax_rate_percent"`
	Cess           *CessRequest     `json:"cess,omitempty"`
}

// ToDomain converts the line to a domain item in the given currency.
func (r LineItemRequest) ToDomain(currency string) domain.LineItem {
	item := domain.LineItem{
		ProductID:      r.ProductID,
		Quantity:       r.Quantity,
		UnitPrice:      domain.Money{Amount: r.UnitPrice, Currency: currency},
		TaxRatePercent: r.TaxRatePercent,
	}
	if r.Discount != nil {
		item.Discount = &domain.Discount{
			Type:  domain.DiscountType(r.Discount.Type),
			Value: r.Discount.Value,
		}
	}
	if r.Cess != nil {
		item.Cess = domain.CessSpec{
			Kind:          domain.CessKind(r.Cess.Kind),
			RatePercent:   r.Cess.RatePercent,
			AmountPerUnit: r.Cess.AmountPerUnit,
		}
	}
	return item
}

func itemsToDomain(items []LineItemRequest, currency string) []domain.LineItem {
	result := make([]domain.LineItem, len(items))
	for i, item := range items {
		result[i] = item.ToDomain(currency)
	}
	return result
}

func orDefaultCurrency(currency string) string {
	if currency == "" {
		return domain.DefaultCurrency
	}
	return currency
}

// PriceInvoiceRequest represents a request to price items without
// posting anything.
type PriceInvoiceRequest struct {
	Currency string            `json:"currency"`
	Items    []LineItemRequest `json:"items"`
}

// ToUseCaseInput converts to use case input.
func (r *PriceInvoiceRequest) ToUseCaseInput() usecase.PriceInvoiceInput {
	return usecase.PriceInvoiceInput{
		Items: itemsToDomain(r.Items, orDefaultCurrency(r.Currency)),
	}
}

// PostInvoiceRequest represents a request to post an invoice.
type PostInvoiceRequest struct {
	InvoiceID     string            `json:"invoice_id,omitempty"`
	AccountID     string            `json:"account_id"`
	Date          *time.Time        `json:"date,omitempty"`
	PaymentMethod string            `json:"payment_method"`
	Currency      string            `json:"currency"`
	Items         []LineItemRequest `json:"items"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
}

// ToUseCaseInput converts to use case input.
func (r *PostInvoiceRequest) ToUseCaseInput() usecase.PostInvoiceInput {
	currency := orDefaultCurrency(r.Currency)
	input := usecase.PostInvoiceInput{
		InvoiceID:     r.InvoiceID,
		AccountID:     r.AccountID,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Items:         itemsToDomain(r.Items, currency),
		AmountPaid:    domain.Money{Amount: r.AmountPaid, Currency: currency},
	}
	if r.Date != nil {
		input.Date = *r.Date
	}
	return input
}

// PostPaymentRequest represents a payment against an account's
// outstanding receivable.
type PostPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *PostPaymentRequest) ToUseCaseInput(accountID string) usecase.PostPaymentInput {
	return usecase.PostPaymentInput{
		AccountID: accountID,
		Amount:    domain.Money{Amount: r.Amount, Currency: orDefaultCurrency(r.Currency)},
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:     r.Name,
		Kind:     domain.AccountKind(r.Kind),
		Currency: r.Currency,
	}
}
