package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind separates customers (receivable side) from suppliers.
type AccountKind string

const (
	AccountCustomer AccountKind = "customer"
	AccountSupplier AccountKind = "supplier"
)

// Account is a trading party with running order aggregates.
// TotalOrders only ever increases; order history is append-only.
type Account struct {
	ID                string
	Name              string
	Kind              AccountKind
	Currency          string
	TotalOrders       int64
	CompletedOrders   int64
	TotalValue        Money
	AverageOrderValue Money
	LastOrderDate     *time.Time
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplyInvoice folds a posted invoice into the running aggregates and
// recomputes the average order value.
func (a *Account) ApplyInvoice(inv *Invoice) error {
	if inv.Totals.GrandTotal.Currency != a.Currency {
		return ErrCurrencyMismatch
	}

	total, err := a.TotalValue.Add(inv.Totals.GrandTotal)
	if err != nil {
		return err
	}

	a.TotalOrders++
	a.CompletedOrders++
	a.TotalValue = total
	a.AverageOrderValue = Money{
		Amount:   total.Amount.Div(decimal.NewFromInt(a.TotalOrders)),
		Currency: a.Currency,
	}
	date := inv.Date
	a.LastOrderDate = &date
	return nil
}
