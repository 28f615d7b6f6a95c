package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLineItem_Compute_FullBreakdown(t *testing.T) {
	// 1000 x 3 with 10% discount, 18% GST and 1% value cess.
	item := LineItem{
		ProductID:      "prod-1",
		Quantity:       3,
		UnitPrice:      mustMoney(t, "1000"),
		Discount:       &Discount{Type: DiscountPercentage, Value: decimal.NewFromInt(10)},
		TaxRatePercent: decimal.NewFromInt(18),
		Cess:           CessSpec{Kind: CessValue, RatePercent: decimal.NewFromInt(1)},
	}

	lc, err := item.Compute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  Money
		want string
	}{
		{"gross", lc.GrossAmount, "3000"},
		{"discounted base", lc.DiscountedBase, "2700"},
		{"tax", lc.TaxAmount, "486"},
		{"cess", lc.CessAmount, "27"},
		{"line total", lc.LineTotal, "3213"},
	}
	for _, c := range checks {
		if !c.got.Amount.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s = %s, want %s", c.name, c.got.Amount, c.want)
		}
	}
}

func TestLineItem_Compute_NoDiscountIdentity(t *testing.T) {
	// With no discount, no cess and zero tax the rounded line total is
	// just round(unitPrice * quantity).
	tests := []struct {
		name      string
		unitPrice string
		quantity  int64
		want      string
	}{
		{"integral", "100", 5, "500"},
		{"fraction rounds down", "333.33", 1, "333"},
		{"fraction rounds up", "10.50", 1, "11"},
		{"fraction accumulates", "0.25", 6, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{
				ProductID: "p",
				Quantity:  tt.quantity,
				UnitPrice: mustMoney(t, tt.unitPrice),
			}
			lc, err := item.Compute()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := lc.LineTotal.Round()
			if !got.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("round(lineTotal) = %s, want %s", got.Amount, tt.want)
			}
		})
	}
}

func TestLineItem_Compute_CessVariants(t *testing.T) {
	base := LineItem{
		ProductID: "p",
		Quantity:  4,
		UnitPrice: mustMoney(t, "250"),
	}

	tests := []struct {
		name string
		cess CessSpec
		want string
	}{
		{"none", CessSpec{Kind: CessNone}, "0"},
		{"zero value spec", CessSpec{}, "0"},
		{"value 2%", CessSpec{Kind: CessValue, RatePercent: decimal.NewFromInt(2)}, "20"},
		{"quantity 1.5 per unit", CessSpec{Kind: CessQuantity, AmountPerUnit: decimal.RequireFromString("1.5")}, "6"},
		{
			"value and quantity",
			CessSpec{Kind: CessValueAndQuantity, RatePercent: decimal.NewFromInt(2), AmountPerUnit: decimal.RequireFromString("1.5")},
			"26",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := base
			item.Cess = tt.cess
			lc, err := item.Compute()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !lc.CessAmount.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("cess = %s, want %s", lc.CessAmount.Amount, tt.want)
			}
		})
	}
}

func TestLineItem_Compute_CessAdditivity(t *testing.T) {
	// The combined variant must equal the sum of the two parts computed
	// separately, with no intermediate rounding.
	value := LineItem{
		ProductID: "p", Quantity: 7, UnitPrice: mustMoney(t, "99.99"),
		Cess: CessSpec{Kind: CessValue, RatePercent: decimal.RequireFromString("1.5")},
	}
	quantity := value
	quantity.Cess = CessSpec{Kind: CessQuantity, AmountPerUnit: decimal.RequireFromString("0.33")}
	both := value
	both.Cess = CessSpec{Kind: CessValueAndQuantity, RatePercent: decimal.RequireFromString("1.5"), AmountPerUnit: decimal.RequireFromString("0.33")}

	vc, err := value.Compute()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	qc, err := quantity.Compute()
	if err != nil {
		t.Fatalf("quantity: %v", err)
	}
	bc, err := both.Compute()
	if err != nil {
		t.Fatalf("both: %v", err)
	}

	sum := vc.CessAmount.Amount.Add(qc.CessAmount.Amount)
	if !bc.CessAmount.Amount.Equal(sum) {
		t.Errorf("combined cess = %s, want %s", bc.CessAmount.Amount, sum)
	}
}

func TestLineItem_Compute_DiscountPolicy(t *testing.T) {
	tests := []struct {
		name     string
		discount *Discount
		wantErr  error
	}{
		{"flat equal to gross is allowed", &Discount{Type: DiscountFlat, Value: decimal.NewFromInt(500)}, nil},
		{"flat above gross is rejected", &Discount{Type: DiscountFlat, Value: decimal.NewFromInt(501)}, ErrInvalidDiscount},
		{"percentage 100 is allowed", &Discount{Type: DiscountPercentage, Value: decimal.NewFromInt(100)}, nil},
		{"percentage above 100 is rejected", &Discount{Type: DiscountPercentage, Value: decimal.NewFromInt(101)}, ErrInvalidDiscount},
		{"negative value is rejected", &Discount{Type: DiscountFlat, Value: decimal.NewFromInt(-1)}, ErrInvalidDiscount},
		{"unknown type is rejected", &Discount{Type: "coupon", Value: decimal.NewFromInt(1)}, ErrInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{ProductID: "p", Quantity: 5, UnitPrice: mustMoney(t, "100"), Discount: tt.discount}
			_, err := item.Compute()
			if err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLineItem_Compute_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LineItem)
		wantErr error
	}{
		{"zero quantity", func(li *LineItem) { li.Quantity = 0 }, ErrInvalidQuantity},
		{"negative quantity", func(li *LineItem) { li.Quantity = -2 }, ErrInvalidQuantity},
		{"negative tax rate", func(li *LineItem) { li.TaxRatePercent = decimal.NewFromInt(-1) }, ErrInvalidTaxRate},
		{"negative cess rate", func(li *LineItem) {
			li.Cess = CessSpec{Kind: CessValue, RatePercent: decimal.NewFromInt(-1)}
		}, ErrInvalidCess},
		{"unknown cess kind", func(li *LineItem) { li.Cess = CessSpec{Kind: "weight"} }, ErrInvalidCess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := LineItem{ProductID: "p", Quantity: 1, UnitPrice: mustMoney(t, "10")}
			tt.mutate(&item)
			_, err := item.Compute()
			if err != tt.wantErr {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLineItem_Compute_Idempotent(t *testing.T) {
	item := LineItem{
		ProductID:      "p",
		Quantity:       3,
		UnitPrice:      mustMoney(t, "333.33"),
		Discount:       &Discount{Type: DiscountPercentage, Value: decimal.RequireFromString("12.5")},
		TaxRatePercent: decimal.RequireFromString("18"),
		Cess:           CessSpec{Kind: CessValueAndQuantity, RatePercent: decimal.NewFromInt(1), AmountPerUnit: decimal.RequireFromString("0.25")},
	}

	first, err := item.Compute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := item.Compute()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pairs := []struct {
		name string
		a, b Money
	}{
		{"gross", first.GrossAmount, second.GrossAmount},
		{"base", first.DiscountedBase, second.DiscountedBase},
		{"tax", first.TaxAmount, second.TaxAmount},
		{"cess", first.CessAmount, second.CessAmount},
		{"total", first.LineTotal, second.LineTotal},
	}
	for _, p := range pairs {
		if !p.a.Equal(p.b) {
			t.Errorf("%s differs between runs: %s vs %s", p.name, p.a, p.b)
		}
	}
}
