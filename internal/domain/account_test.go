package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAccount_ApplyInvoice(t *testing.T) {
	acc := &Account{
		ID:                "acc-1",
		Name:              "Sharma Traders",
		Kind:              AccountCustomer,
		Currency:          "INR",
		TotalValue:        ZeroMoney("INR"),
		AverageOrderValue: ZeroMoney("INR"),
	}

	first := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	second := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

	inv1, err := BuildInvoice("inv-1", acc.ID, first, PaymentCash,
		[]LineItem{{ProductID: "p", Quantity: 1, UnitPrice: mustMoney(t, "1000")}}, mustMoney(t, "1000"))
	if err != nil {
		t.Fatalf("BuildInvoice: %v", err)
	}
	inv2, err := BuildInvoice("inv-2", acc.ID, second, PaymentCredit,
		[]LineItem{{ProductID: "p", Quantity: 1, UnitPrice: mustMoney(t, "3000")}}, ZeroMoney("INR"))
	if err != nil {
		t.Fatalf("BuildInvoice: %v", err)
	}

	if err := acc.ApplyInvoice(inv1); err != nil {
		t.Fatalf("ApplyInvoice: %v", err)
	}
	if err := acc.ApplyInvoice(inv2); err != nil {
		t.Fatalf("ApplyInvoice: %v", err)
	}

	if acc.TotalOrders != 2 || acc.CompletedOrders != 2 {
		t.Errorf("orders = %d/%d, want 2/2", acc.TotalOrders, acc.CompletedOrders)
	}
	if !acc.TotalValue.Amount.Equal(decimal.NewFromInt(4000)) {
		t.Errorf("total value = %s, want 4000", acc.TotalValue.Amount)
	}
	if !acc.AverageOrderValue.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("average order value = %s, want 2000", acc.AverageOrderValue.Amount)
	}
	if acc.LastOrderDate == nil || !acc.LastOrderDate.Equal(second) {
		t.Errorf("last order date = %v, want %v", acc.LastOrderDate, second)
	}
}

func TestAccount_ApplyInvoice_CurrencyMismatch(t *testing.T) {
	acc := &Account{ID: "acc-1", Currency: "USD", TotalValue: ZeroMoney("USD")}

	inv, err := BuildInvoice("inv-1", acc.ID, time.Now().UTC(), PaymentCash,
		[]LineItem{{ProductID: "p", Quantity: 1, UnitPrice: mustMoney(t, "100")}}, ZeroMoney("INR"))
	if err != nil {
		t.Fatalf("BuildInvoice: %v", err)
	}

	if err := acc.ApplyInvoice(inv); err != ErrCurrencyMismatch {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}
