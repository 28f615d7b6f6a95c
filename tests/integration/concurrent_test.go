package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/tests/testutil"
)

func TestConcurrentPostings(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	testDB.TruncateAll(ctx)

	stack := newLedgerStack(testDB.Pool)

	account := testDB.CreateTestAccount(ctx, "busy-account", "INR")

	numPostings := 50
	lineAmount := int64(100)

	var (
		wg           sync.WaitGroup
		successCount atomic.Int32
	)

	wg.Add(numPostings)

	for i := 0; i < numPostings; i++ {
		go func() {
			defer wg.Done()

			_, err := stack.ledgerUC.PostInvoice(ctx, usecase.PostInvoiceInput{
				AccountID:     account.ID,
				PaymentMethod: domain.PaymentCredit,
				Items:         testutil.PlainItem(lineAmount, "INR"),
				AmountPaid:    domain.ZeroMoney("INR"),
			})
			if err == nil {
				successCount.Add(1)
			} else {
				t.Errorf("posting failed: %v", err)
			}
		}()
	}

	wg.Wait()

	if int(successCount.Load()) != numPostings {
		t.Fatalf("expected %d successful postings, got %d", numPostings, successCount.Load())
	}

	updated, err := stack.accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("failed to load account: %v", err)
	}
	if updated.TotalOrders != int64(numPostings) {
		t.Errorf("expected %d orders, got %d", numPostings, updated.TotalOrders)
	}

	wantTotal := decimal.NewFromInt(lineAmount * int64(numPostings))
	if !updated.TotalValue.Amount.Equal(wantTotal) {
		t.Errorf("expected total value %s, got %s", wantTotal, updated.TotalValue.Amount)
	}

	receivable, err := stack.receivableRepo.GetByAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("failed to load receivable: %v", err)
	}
	if !receivable.TotalReceivable.Amount.Equal(wantTotal) {
		t.Errorf("expected receivable %s, got %s", wantTotal, receivable.TotalReceivable.Amount)
	}
	if receivable.InvoiceCount != int64(numPostings) {
		t.Errorf("expected %d open invoices, got %d", numPostings, receivable.InvoiceCount)
	}

	// The receivable must match the open invoice balances exactly.
	if _, err := stack.bookUC.CheckConsistency(ctx); err != nil {
		t.Errorf("consistency check failed after concurrent postings: %v", err)
	}
}
