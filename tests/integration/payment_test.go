package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/tests/testutil"
)

func TestPostPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB.Pool)

	inr := func(n int64) domain.Money {
		return domain.Money{Amount: decimal.NewFromInt(n), Currency: "INR"}
	}

	postCredit := func(t *testing.T, accountID string, amount int64, date time.Time) *domain.Invoice {
		t.Helper()
		result, err := stack.ledgerUC.PostInvoice(ctx, usecase.PostInvoiceInput{
			AccountID:     accountID,
			Date:          date,
			PaymentMethod: domain.PaymentCredit,
			Items:         testutil.PlainItem(amount, "INR"),
			AmountPaid:    domain.ZeroMoney("INR"),
		})
		if err != nil {
			t.Fatalf("failed to post invoice: %v", err)
		}
		return result.Invoice
	}

	t.Run("payment settles oldest invoice first", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "oldest-first", "INR")

		now := time.Now().UTC()
		older := postCredit(t, account.ID, 500, now.AddDate(0, 0, -40))
		newer := postCredit(t, account.ID, 300, now)

		result, err := stack.ledgerUC.PostPayment(ctx, usecase.PostPaymentInput{
			AccountID: account.ID,
			Amount:    inr(500),
		})
		if err != nil {
			t.Fatalf("failed to post payment: %v", err)
		}
		if result.Settled {
			t.Fatal("expected receivable to remain open")
		}
		if !result.Receivable.TotalReceivable.Amount.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected 300 outstanding, got %s", result.Receivable.TotalReceivable.Amount)
		}

		paid, err := stack.invoiceRepo.GetByID(ctx, older.ID)
		if err != nil {
			t.Fatalf("failed to load older invoice: %v", err)
		}
		if paid.Status != domain.InvoiceStatusPaid {
			t.Errorf("expected older invoice paid, got %s", paid.Status)
		}

		open, err := stack.invoiceRepo.GetByID(ctx, newer.ID)
		if err != nil {
			t.Fatalf("failed to load newer invoice: %v", err)
		}
		if open.Status != domain.InvoiceStatusOpen {
			t.Errorf("expected newer invoice still open, got %s", open.Status)
		}
	})

	t.Run("full payment removes the receivable", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "settles", "INR")
		postCredit(t, account.ID, 800, time.Now().UTC())

		result, err := stack.ledgerUC.PostPayment(ctx, usecase.PostPaymentInput{
			AccountID: account.ID,
			Amount:    inr(800),
		})
		if err != nil {
			t.Fatalf("failed to post payment: %v", err)
		}
		if !result.Settled {
			t.Fatal("expected the payment to settle the account")
		}

		if _, err := stack.receivableRepo.GetByAccount(ctx, account.ID); !errors.Is(err, domain.ErrReceivableNotFound) {
			t.Errorf("expected receivable removed, got err=%v", err)
		}
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		account := testDB.CreateTestAccount(ctx, "no-credit-balance", "INR")
		postCredit(t, account.ID, 200, time.Now().UTC())

		_, err := stack.ledgerUC.PostPayment(ctx, usecase.PostPaymentInput{
			AccountID: account.ID,
			Amount:    inr(201),
		})
		if !errors.Is(err, domain.ErrOverPayment) {
			t.Fatalf("expected ErrOverPayment, got %v", err)
		}

		// Outstanding balance unchanged.
		receivable, err := stack.receivableRepo.GetByAccount(ctx, account.ID)
		if err != nil {
			t.Fatalf("failed to load receivable: %v", err)
		}
		if !receivable.TotalReceivable.Amount.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected 200 outstanding, got %s", receivable.TotalReceivable.Amount)
		}
	})

	t.Run("payment against unknown account", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		_, err := stack.ledgerUC.PostPayment(ctx, usecase.PostPaymentInput{
			AccountID: testutil.GenerateID(),
			Amount:    inr(100),
		})
		if !errors.Is(err, domain.ErrAccountNotFound) {
			t.Fatalf("expected ErrAccountNotFound, got %v", err)
		}
	})
}
