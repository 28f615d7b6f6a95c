package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bizledger/internal/domain"
	"github.com/iho/bizledger/internal/usecase"
	"github.com/iho/bizledger/internal/usecase/mocks"
)

type ledgerFixture struct {
	uc          *usecase.LedgerUseCase
	accounts    *mocks.MockAccountRepository
	invoices    *mocks.MockInvoiceRepository
	receivables *mocks.MockReceivableRepository
	outbox      *mocks.MockOutboxRepository
	cache       *mocks.MockCache
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		accounts:    mocks.NewMockAccountRepository(),
		invoices:    mocks.NewMockInvoiceRepository(),
		receivables: mocks.NewMockReceivableRepository(),
		outbox:      mocks.NewMockOutboxRepository(),
		cache:       mocks.NewMockCache(),
	}
	f.uc = usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		f.accounts,
		f.invoices,
		f.receivables,
		f.outbox,
		mocks.NewMockIDGenerator(),
		f.cache,
		nil,
		domain.DefaultAgingPolicy(),
	)
	return f
}

func seedAccount(f *ledgerFixture, id string) *domain.Account {
	acc := &domain.Account{
		ID:                id,
		Name:              "Test Traders",
		Kind:              domain.AccountCustomer,
		Currency:          domain.DefaultCurrency,
		TotalValue:        domain.ZeroMoney(domain.DefaultCurrency),
		AverageOrderValue: domain.ZeroMoney(domain.DefaultCurrency),
	}
	f.accounts.Seed(acc)
	return acc
}

func inr(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.NewMoney(decimal.RequireFromString(s), domain.DefaultCurrency)
	require.NoError(t, err)
	return m
}

func TestLedgerUseCase_PostInvoice(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	result, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		AccountID:     "acc-1",
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentMethod: domain.PaymentCredit,
		Items: []domain.LineItem{{
			ProductID:      "p1",
			Quantity:       3,
			UnitPrice:      inr(t, "1000"),
			Discount:       &domain.Discount{Type: domain.DiscountPercentage, Value: decimal.NewFromInt(10)},
			TaxRatePercent: decimal.NewFromInt(18),
			Cess:           domain.CessSpec{Kind: domain.CessValue, RatePercent: decimal.NewFromInt(1)},
		}},
		AmountPaid: inr(t, "1000"),
	})
	require.NoError(t, err)

	assert.True(t, result.Invoice.Totals.GrandTotal.Amount.Equal(decimal.NewFromInt(3213)))
	assert.True(t, result.Invoice.BalanceDue.Amount.Equal(decimal.NewFromInt(2213)))

	assert.Equal(t, int64(1), result.Account.TotalOrders)
	assert.Equal(t, int64(1), result.Account.CompletedOrders)
	assert.True(t, result.Account.TotalValue.Amount.Equal(decimal.NewFromInt(3213)))
	assert.True(t, result.Account.AverageOrderValue.Amount.Equal(decimal.NewFromInt(3213)))
	require.NotNil(t, result.Account.LastOrderDate)

	require.NotNil(t, result.Receivable)
	assert.True(t, result.Receivable.TotalReceivable.Amount.Equal(decimal.NewFromInt(2213)))
	assert.Equal(t, int64(1), result.Receivable.InvoiceCount)

	require.Len(t, f.outbox.Events, 1)
	assert.Equal(t, domain.EventTypeInvoicePosted, f.outbox.Events[0].EventType)
	assert.Contains(t, f.cache.Deleted, "account_summary:acc-1")
}

func TestLedgerUseCase_PostInvoice_FullyPaidHasNoReceivable(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	result, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		AccountID:     "acc-1",
		PaymentMethod: domain.PaymentCash,
		Items:         []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "500")}},
		AmountPaid:    inr(t, "500"),
	})
	require.NoError(t, err)
	assert.Nil(t, result.Receivable)

	_, err = f.receivables.GetByAccount(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrReceivableNotFound)
}

func TestLedgerUseCase_PostInvoice_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	input := usecase.PostInvoiceInput{
		InvoiceID:     "inv-dup",
		AccountID:     "acc-1",
		PaymentMethod: domain.PaymentCash,
		Items:         []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "100")}},
		AmountPaid:    inr(t, "0"),
	}

	_, err := f.uc.PostInvoice(ctx, input)
	require.NoError(t, err)

	_, err = f.uc.PostInvoice(ctx, input)
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoice)

	// Nothing was double counted.
	acc, err := f.accounts.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.TotalOrders)
	r, err := f.receivables.GetByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, r.TotalReceivable.Amount.Equal(decimal.NewFromInt(100)))
}

func TestLedgerUseCase_PostInvoice_Validation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	tests := []struct {
		name    string
		input   usecase.PostInvoiceInput
		wantErr error
	}{
		{
			name:    "no items",
			input:   usecase.PostInvoiceInput{AccountID: "acc-1", AmountPaid: domain.ZeroMoney("INR")},
			wantErr: domain.ErrEmptyInvoice,
		},
		{
			name: "unknown account",
			input: usecase.PostInvoiceInput{
				AccountID:  "acc-missing",
				Items:      []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "10")}},
				AmountPaid: domain.ZeroMoney("INR"),
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "overpaid at sale time",
			input: usecase.PostInvoiceInput{
				AccountID:  "acc-1",
				Items:      []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "10")}},
				AmountPaid: inr(t, "11"),
			},
			wantErr: domain.ErrOverPayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.PostInvoice(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLedgerUseCase_PaymentConservation(t *testing.T) {
	// Posting an invoice and then paying exactly its balance returns
	// the receivable to its prior state.
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	_, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		InvoiceID:     "inv-1",
		AccountID:     "acc-1",
		PaymentMethod: domain.PaymentCredit,
		Items:         []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "600")}},
		AmountPaid:    inr(t, "0"),
	})
	require.NoError(t, err)

	result, err := f.uc.PostPayment(ctx, usecase.PostPaymentInput{
		AccountID: "acc-1",
		Amount:    inr(t, "600"),
	})
	require.NoError(t, err)
	assert.True(t, result.Settled)
	assert.Nil(t, result.Receivable)

	_, err = f.receivables.GetByAccount(ctx, "acc-1")
	assert.ErrorIs(t, err, domain.ErrReceivableNotFound)

	inv, err := f.invoices.GetByID(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.BalanceDue.IsZero())
}

func TestLedgerUseCase_PostPayment_AllocatesOldestFirst(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, inv := range []struct {
		id   string
		date time.Time
	}{{"inv-old", older}, {"inv-new", newer}} {
		_, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
			InvoiceID:     inv.id,
			AccountID:     "acc-1",
			Date:          inv.date,
			PaymentMethod: domain.PaymentCredit,
			Items:         []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "500")}},
			AmountPaid:    inr(t, "0"),
		})
		require.NoError(t, err)
	}

	result, err := f.uc.PostPayment(ctx, usecase.PostPaymentInput{
		AccountID: "acc-1",
		Amount:    inr(t, "700"),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Receivable)
	assert.True(t, result.Receivable.TotalReceivable.Amount.Equal(decimal.NewFromInt(300)))

	oldInv, err := f.invoices.GetByID(ctx, "inv-old")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, oldInv.Status)

	newInv, err := f.invoices.GetByID(ctx, "inv-new")
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOpen, newInv.Status)
	assert.True(t, newInv.BalanceDue.Amount.Equal(decimal.NewFromInt(300)))
}

func TestLedgerUseCase_PostPayment_Errors(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	_, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		AccountID:     "acc-1",
		PaymentMethod: domain.PaymentCredit,
		Items:         []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "100")}},
		AmountPaid:    inr(t, "0"),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		input   usecase.PostPaymentInput
		wantErr error
	}{
		{"zero amount", usecase.PostPaymentInput{AccountID: "acc-1", Amount: domain.ZeroMoney("INR")}, domain.ErrInvalidAmount},
		{"overpayment", usecase.PostPaymentInput{AccountID: "acc-1", Amount: inr(t, "100.01")}, domain.ErrOverPayment},
		{"unknown account", usecase.PostPaymentInput{AccountID: "acc-x", Amount: inr(t, "10")}, domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.PostPayment(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLedgerUseCase_PostPayment_NoReceivable(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	_, err := f.uc.PostPayment(ctx, usecase.PostPaymentInput{
		AccountID: "acc-1",
		Amount:    inr(t, "10"),
	})
	assert.ErrorIs(t, err, domain.ErrReceivableNotFound)
}

func TestLedgerUseCase_ReceivableAccumulatesAcrossInvoices(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture()
	seedAccount(f, "acc-1")

	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	earlier := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	_, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		AccountID: "acc-1", Date: first, PaymentMethod: domain.PaymentCredit,
		Items:      []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "300")}},
		AmountPaid: inr(t, "0"),
	})
	require.NoError(t, err)

	result, err := f.uc.PostInvoice(ctx, usecase.PostInvoiceInput{
		AccountID: "acc-1", Date: earlier, PaymentMethod: domain.PaymentCredit,
		Items:      []domain.LineItem{{ProductID: "p", Quantity: 1, UnitPrice: inr(t, "200")}},
		AmountPaid: inr(t, "0"),
	})
	require.NoError(t, err)

	require.NotNil(t, result.Receivable)
	assert.True(t, result.Receivable.TotalReceivable.Amount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(2), result.Receivable.InvoiceCount)
	assert.True(t, result.Receivable.OldestInvoiceDate.Equal(earlier))
}
