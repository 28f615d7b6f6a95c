package domain

import (
	"time"
)

// Receivable tracks the outstanding balance owed by one account.
// One row per account; it exists only while something is owed.
//
// OverdueAmount keeps the legacy posting-time accumulation (every
// unpaid balance counts immediately); the authoritative buckets and
// status come from date-based aging recomputed at read time.
type Receivable struct {
	AccountID         string
	TotalReceivable   Money
	OverdueAmount     Money
	InvoiceCount      int64
	OldestInvoiceDate time.Time
	DaysPastDue       int
	Status            AgingStatus
	UpdatedAt         time.Time
}

// NewReceivable creates the receivable for an account's first unpaid
// invoice.
func NewReceivable(accountID string, balance Money, invoiceDate time.Time) *Receivable {
	return &Receivable{
		AccountID:         accountID,
		TotalReceivable:   balance,
		OverdueAmount:     balance,
		InvoiceCount:      1,
		OldestInvoiceDate: invoiceDate,
		Status:            AgingStatusCurrent,
	}
}

// ApplyInvoice accumulates another unpaid invoice balance.
func (r *Receivable) ApplyInvoice(balance Money, invoiceDate time.Time) error {
	total, err := r.TotalReceivable.Add(balance)
	if err != nil {
		return err
	}
	overdue, err := r.OverdueAmount.Add(balance)
	if err != nil {
		return err
	}
	r.TotalReceivable = total
	r.OverdueAmount = overdue
	r.InvoiceCount++
	if invoiceDate.Before(r.OldestInvoiceDate) {
		r.OldestInvoiceDate = invoiceDate
	}
	return nil
}

// ApplyPayment reduces the outstanding balance. Payments above the
// outstanding total are rejected; the engine does not keep credit
// balances.
func (r *Receivable) ApplyPayment(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(r.TotalReceivable) {
		return ErrOverPayment
	}
	total, err := r.TotalReceivable.Sub(amount)
	if err != nil {
		return err
	}
	r.TotalReceivable = total
	if r.OverdueAmount.GreaterThan(total) {
		r.OverdueAmount = total
	}
	return nil
}

// Settled reports whether nothing is owed any more.
func (r *Receivable) Settled() bool {
	return r.TotalReceivable.IsZero()
}

// Refresh recomputes the date-derived fields from an aging report.
func (r *Receivable) Refresh(report AgingReport) {
	r.DaysPastDue = report.DaysPastDue
	r.Status = report.Status
}
