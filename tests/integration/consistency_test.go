package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/tests/testutil"
)

func TestBookConsistencyAndAging(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)

	stack := newLedgerStack(testDB.Pool)

	post := func(t *testing.T, accountID string, amount int64, date time.Time) {
		t.Helper()
		_, err := stack.ledgerUC.PostInvoice(ctx, usecase.PostInvoiceInput{
			AccountID:     accountID,
			Date:          date,
			PaymentMethod: domain.PaymentCredit,
			Items:         testutil.PlainItem(amount, "INR"),
			AmountPaid:    domain.ZeroMoney("INR"),
		})
		if err != nil {
			t.Fatalf("failed to post invoice: %v", err)
		}
	}

	now := time.Now().UTC()

	fresh := testDB.CreateTestAccount(ctx, "fresh-buyer", "INR")
	post(t, fresh.ID, 100, now)

	stale := testDB.CreateTestAccount(ctx, "stale-buyer", "INR")
	post(t, stale.ID, 400, now.AddDate(0, 0, -65))
	post(t, stale.ID, 250, now.AddDate(0, 0, -45))

	t.Run("aging buckets by invoice date", func(t *testing.T) {
		report, err := stack.agingUC.ComputeAging(ctx, stale.ID, now)
		if err != nil {
			t.Fatalf("failed to compute aging: %v", err)
		}

		if !report.Bucket60Plus.Amount.Equal(decimal.NewFromInt(400)) {
			t.Errorf("expected 400 past 60 days, got %s", report.Bucket60Plus.Amount)
		}
		if !report.Bucket31to60.Amount.Equal(decimal.NewFromInt(250)) {
			t.Errorf("expected 250 in 31-60, got %s", report.Bucket31to60.Amount)
		}
		if !report.Current.Amount.IsZero() {
			t.Errorf("expected nothing current, got %s", report.Current.Amount)
		}
		if report.Status != domain.AgingStatusCritical {
			t.Errorf("expected critical status, got %s", report.Status)
		}
		if report.DaysPastDue != 65 {
			t.Errorf("expected 65 days past due, got %d", report.DaysPastDue)
		}
	})

	t.Run("aging of fresh account is current", func(t *testing.T) {
		report, err := stack.agingUC.ComputeAging(ctx, fresh.ID, now)
		if err != nil {
			t.Fatalf("failed to compute aging: %v", err)
		}
		if report.Status != domain.AgingStatusCurrent {
			t.Errorf("expected current status, got %s", report.Status)
		}
		if !report.Current.Amount.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected 100 current, got %s", report.Current.Amount)
		}
	})

	t.Run("book is consistent after postings and payment", func(t *testing.T) {
		if _, err := stack.ledgerUC.PostPayment(ctx, usecase.PostPaymentInput{
			AccountID: stale.ID,
			Amount:    domain.Money{Amount: decimal.NewFromInt(400), Currency: "INR"},
		}); err != nil {
			t.Fatalf("failed to post payment: %v", err)
		}

		result, err := stack.bookUC.CheckConsistency(ctx)
		if err != nil {
			t.Fatalf("consistency check failed: %v", err)
		}
		if !result.Consistent {
			t.Fatalf("expected consistent book, got %+v", result.Accounts)
		}
		if len(result.Accounts) != 2 {
			t.Errorf("expected 2 accounts in the book, got %d", len(result.Accounts))
		}
	})

	t.Run("receivables listed largest first", func(t *testing.T) {
		receivables, err := stack.bookUC.ListReceivables(ctx, 10, 0)
		if err != nil {
			t.Fatalf("failed to list receivables: %v", err)
		}
		if len(receivables) != 2 {
			t.Fatalf("expected 2 receivables, got %d", len(receivables))
		}
		if receivables[0].TotalReceivable.Amount.LessThan(receivables[1].TotalReceivable.Amount) {
			t.Errorf("expected largest receivable first, got %s then %s",
				receivables[0].TotalReceivable.Amount, receivables[1].TotalReceivable.Amount)
		}
	})
}
