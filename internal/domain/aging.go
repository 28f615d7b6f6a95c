package domain

import (
	"time"
)

// AgingStatus classifies how overdue an account is.
type AgingStatus string

const (
	AgingStatusCurrent  AgingStatus = "current"
	AgingStatusOverdue  AgingStatus = "overdue"
	AgingStatusCritical AgingStatus = "critical"
)

// AgingPolicy holds the bucket and status thresholds, in days.
// Defaults match the standard 0-30 / 31-60 / 60+ windows with critical
// starting past 60 days.
type AgingPolicy struct {
	CurrentWindowDays int
	MidWindowDays     int
	CriticalAfterDays int
}

// DefaultAgingPolicy returns the standard thresholds.
func DefaultAgingPolicy() AgingPolicy {
	return AgingPolicy{
		CurrentWindowDays: 30,
		MidWindowDays:     60,
		CriticalAfterDays: 60,
	}
}

// AgingReport buckets an account's outstanding balance by invoice age.
type AgingReport struct {
	Current      Money
	Bucket31to60 Money
	Bucket60Plus Money
	DaysPastDue  int
	Status       AgingStatus
}

// ComputeAging buckets the open invoices by age relative to today.
// Pure over its inputs; callers invoke it at read time so the result is
// never stale with respect to "today".
func ComputeAging(invoices []*Invoice, today time.Time, policy AgingPolicy) AgingReport {
	currency := DefaultCurrency
	for _, inv := range invoices {
		currency = inv.BalanceDue.Currency
		break
	}

	report := AgingReport{
		Current:      ZeroMoney(currency),
		Bucket31to60: ZeroMoney(currency),
		Bucket60Plus: ZeroMoney(currency),
		Status:       AgingStatusCurrent,
	}

	for _, inv := range invoices {
		if inv.Status != InvoiceStatusOpen || !inv.BalanceDue.IsPositive() {
			continue
		}

		age := daysBetween(inv.Date, today)
		if age < 0 {
			age = 0
		}
		if age > report.DaysPastDue {
			report.DaysPastDue = age
		}

		switch {
		case age <= policy.CurrentWindowDays:
			report.Current, _ = report.Current.Add(inv.BalanceDue)
		case age <= policy.MidWindowDays:
			report.Bucket31to60, _ = report.Bucket31to60.Add(inv.BalanceDue)
		default:
			report.Bucket60Plus, _ = report.Bucket60Plus.Add(inv.BalanceDue)
		}
	}

	switch {
	case report.DaysPastDue == 0:
		report.Status = AgingStatusCurrent
	case report.DaysPastDue <= policy.CriticalAfterDays:
		report.Status = AgingStatusOverdue
	default:
		report.Status = AgingStatusCritical
	}

	return report
}

// daysBetween counts whole calendar days from a to b, ignoring the
// time-of-day component.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}
