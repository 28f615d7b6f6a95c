package domain

import (
	"time"
)

// InvoiceStatus tracks whether an invoice still carries a balance.
type InvoiceStatus string

const (
	InvoiceStatusOpen InvoiceStatus = "open"
	InvoiceStatusPaid InvoiceStatus = "paid"
)

// PaymentMethod is how the buyer settled (or partially settled) at sale
// time. Opaque to the engine beyond display.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentCredit PaymentMethod = "credit"
)

// InvoiceTotals are the invoice-level aggregates. Each field is rounded
// from its own full-precision accumulator, so GrandTotal is NOT
// Subtotal + TaxTotal + CessTotal by construction.
type InvoiceTotals struct {
	Subtotal   Money
	TaxTotal   Money
	CessTotal  Money
	GrandTotal Money
}

// AggregateLines sums per-line computations into invoice totals.
// Each section total and the grand total are accumulated unrounded and
// rounded once at the end, independently of each other. That keeps the
// grand total equal to what an auditor gets by rounding the
// full-precision invoice total once.
func AggregateLines(lines []LineComputation) (InvoiceTotals, error) {
	if len(lines) == 0 {
		return InvoiceTotals{}, ErrEmptyInvoice
	}

	currency := lines[0].LineTotal.Currency
	subtotal := ZeroMoney(currency)
	taxTotal := ZeroMoney(currency)
	cessTotal := ZeroMoney(currency)
	grandTotal := ZeroMoney(currency)

	var err error
	for _, lc := range lines {
		if subtotal, err = subtotal.Add(lc.DiscountedBase); err != nil {
			return InvoiceTotals{}, err
		}
		if taxTotal, err = taxTotal.Add(lc.TaxAmount); err != nil {
			return InvoiceTotals{}, err
		}
		if cessTotal, err = cessTotal.Add(lc.CessAmount); err != nil {
			return InvoiceTotals{}, err
		}
		if grandTotal, err = grandTotal.Add(lc.LineTotal); err != nil {
			return InvoiceTotals{}, err
		}
	}

	return InvoiceTotals{
		Subtotal:   subtotal.Round(),
		TaxTotal:   taxTotal.Round(),
		CessTotal:  cessTotal.Round(),
		GrandTotal: grandTotal.Round(),
	}, nil
}

// Invoice is a finalized, priced sale ready for ledger posting.
// Line order is display-relevant only.
type Invoice struct {
	ID            string
	AccountID     string
	Date          time.Time
	PaymentMethod PaymentMethod
	Items         []LineItem
	Lines         []LineComputation
	Totals        InvoiceTotals
	AmountPaid    Money
	BalanceDue    Money
	Status        InvoiceStatus
	CreatedAt     time.Time
}

// BuildInvoice prices the raw items and assembles an invoice.
// AmountPaid above the grand total is rejected; excess payment must be
// recorded as a separate credit by the caller.
func BuildInvoice(id, accountID string, date time.Time, method PaymentMethod, items []LineItem, amountPaid Money) (*Invoice, error) {
	if len(items) == 0 {
		return nil, ErrEmptyInvoice
	}

	lines := make([]LineComputation, 0, len(items))
	for _, item := range items {
		lc, err := item.Compute()
		if err != nil {
			return nil, err
		}
		lines = append(lines, lc)
	}

	totals, err := AggregateLines(lines)
	if err != nil {
		return nil, err
	}

	if amountPaid.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if amountPaid.GreaterThan(totals.GrandTotal) {
		return nil, ErrOverPayment
	}

	balance, err := totals.GrandTotal.Sub(amountPaid)
	if err != nil {
		return nil, err
	}

	status := InvoiceStatusOpen
	if balance.IsZero() {
		status = InvoiceStatusPaid
	}

	return &Invoice{
		ID:            id,
		AccountID:     accountID,
		Date:          date,
		PaymentMethod: method,
		Items:         items,
		Lines:         lines,
		Totals:        totals,
		AmountPaid:    amountPaid,
		BalanceDue:    balance,
		Status:        status,
	}, nil
}

// Settle reduces the invoice balance by amount and flips the status to
// paid when nothing remains. Returns the amount actually absorbed,
// which is at most the outstanding balance.
func (inv *Invoice) Settle(amount Money) (Money, error) {
	if amount.Currency != inv.BalanceDue.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	absorbed := amount
	if absorbed.GreaterThan(inv.BalanceDue) {
		absorbed = inv.BalanceDue
	}
	remaining, err := inv.BalanceDue.Sub(absorbed)
	if err != nil {
		return Money{}, err
	}
	inv.BalanceDue = remaining
	if remaining.IsZero() {
		inv.Status = InvoiceStatusPaid
	}
	return absorbed, nil
}
