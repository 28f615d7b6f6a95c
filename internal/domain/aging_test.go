package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func openInvoice(t *testing.T, id string, date time.Time, balance string) *Invoice {
	t.Helper()
	items := []LineItem{{ProductID: "p", Quantity: 1, UnitPrice: mustMoney(t, balance)}}
	inv, err := BuildInvoice(id, "acc-1", date, PaymentCredit, items, ZeroMoney(DefaultCurrency))
	if err != nil {
		t.Fatalf("BuildInvoice: %v", err)
	}
	return inv
}

func TestComputeAging_Buckets(t *testing.T) {
	today := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultAgingPolicy()

	invoices := []*Invoice{
		openInvoice(t, "inv-today", today, "100"),
		openInvoice(t, "inv-30", today.AddDate(0, 0, -30), "200"),
		openInvoice(t, "inv-31", today.AddDate(0, 0, -31), "300"),
		openInvoice(t, "inv-60", today.AddDate(0, 0, -60), "400"),
		openInvoice(t, "inv-61", today.AddDate(0, 0, -61), "500"),
	}

	report := ComputeAging(invoices, today, policy)

	if !report.Current.Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("current = %s, want 300", report.Current.Amount)
	}
	if !report.Bucket31to60.Amount.Equal(decimal.NewFromInt(700)) {
		t.Errorf("31-60 = %s, want 700", report.Bucket31to60.Amount)
	}
	if !report.Bucket60Plus.Amount.Equal(decimal.NewFromInt(500)) {
		t.Errorf("60+ = %s, want 500", report.Bucket60Plus.Amount)
	}
	if report.DaysPastDue != 61 {
		t.Errorf("daysPastDue = %d, want 61", report.DaysPastDue)
	}
	if report.Status != AgingStatusCritical {
		t.Errorf("status = %s, want critical", report.Status)
	}
}

func TestComputeAging_Status(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := DefaultAgingPolicy()

	tests := []struct {
		name    string
		ageDays int
		want    AgingStatus
	}{
		{"same day", 0, AgingStatusCurrent},
		{"one day old", 1, AgingStatusOverdue},
		{"sixty days old", 60, AgingStatusOverdue},
		{"sixty one days old", 61, AgingStatusCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invs := []*Invoice{openInvoice(t, "inv", today.AddDate(0, 0, -tt.ageDays), "100")}
			report := ComputeAging(invs, today, policy)
			if report.Status != tt.want {
				t.Errorf("status = %s, want %s", report.Status, tt.want)
			}
			if report.DaysPastDue != tt.ageDays {
				t.Errorf("daysPastDue = %d, want %d", report.DaysPastDue, tt.ageDays)
			}
		})
	}
}

func TestComputeAging_Monotonicity(t *testing.T) {
	// For a fixed invoice set, daysPastDue at T+1 is >= its value at T.
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	invoices := []*Invoice{
		openInvoice(t, "a", start.AddDate(0, 0, -10), "100"),
		openInvoice(t, "b", start.AddDate(0, 0, -45), "200"),
	}
	policy := DefaultAgingPolicy()

	prev := ComputeAging(invoices, start, policy).DaysPastDue
	for day := 1; day <= 90; day++ {
		got := ComputeAging(invoices, start.AddDate(0, 0, day), policy).DaysPastDue
		if got < prev {
			t.Fatalf("daysPastDue decreased from %d to %d at day %d", prev, got, day)
		}
		prev = got
	}
}

func TestComputeAging_SkipsSettledInvoices(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	paid := openInvoice(t, "paid", today.AddDate(0, 0, -90), "100")
	if _, err := paid.Settle(mustMoney(t, "100")); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	report := ComputeAging([]*Invoice{paid}, today, DefaultAgingPolicy())
	if report.DaysPastDue != 0 {
		t.Errorf("daysPastDue = %d, want 0", report.DaysPastDue)
	}
	if report.Status != AgingStatusCurrent {
		t.Errorf("status = %s, want current", report.Status)
	}
	if !report.Bucket60Plus.IsZero() {
		t.Errorf("60+ = %s, want 0", report.Bucket60Plus.Amount)
	}
}

func TestComputeAging_NoInvoices(t *testing.T) {
	report := ComputeAging(nil, time.Now().UTC(), DefaultAgingPolicy())
	if report.Status != AgingStatusCurrent || report.DaysPastDue != 0 {
		t.Errorf("empty set: status = %s daysPastDue = %d, want current/0", report.Status, report.DaysPastDue)
	}
}

func TestComputeAging_IgnoresTimeOfDay(t *testing.T) {
	invoiceAt := time.Date(2026, 5, 31, 23, 59, 0, 0, time.UTC)
	today := time.Date(2026, 6, 1, 0, 1, 0, 0, time.UTC)

	report := ComputeAging([]*Invoice{openInvoice(t, "inv", invoiceAt, "50")}, today, DefaultAgingPolicy())
	if report.DaysPastDue != 1 {
		t.Errorf("daysPastDue = %d, want 1 (calendar-day ages)", report.DaysPastDue)
	}
}
