package domain

import (
	"github.com/shopspring/decimal"
)

// DiscountType selects how a line discount is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Discount is an optional per-line reduction applied before tax.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// CessKind selects how cess is levied on a line.
type CessKind string

const (
	CessNone             CessKind = "none"
	CessValue            CessKind = "value"
	CessQuantity         CessKind = "quantity"
	CessValueAndQuantity CessKind = "valueAndQuantity"
)

// CessSpec describes the cess levy for a line item. RatePercent applies
// for value-based kinds, AmountPerUnit for quantity-based kinds.
type CessSpec struct {
	Kind          CessKind
	RatePercent   decimal.Decimal
	AmountPerUnit decimal.Decimal
}

// LineItem is one raw sale line as captured by the calling surface.
// A nil Discount means no discount; a zero-value CessSpec means no cess.
type LineItem struct {
	ProductID      string
	Quantity       int64
	UnitPrice      Money
	Discount       *Discount
	TaxRatePercent decimal.Decimal
	Cess           CessSpec
}

// LineComputation holds the derived amounts for one line at full
// precision. It is never mutated after creation; Rounded produces the
// display/persist form.
type LineComputation struct {
	GrossAmount    Money
	DiscountedBase Money
	TaxAmount      Money
	CessAmount     Money
	LineTotal      Money
}

var oneHundred = decimal.NewFromInt(100)

// Validate checks the raw line before computation.
func (li LineItem) Validate() error {
	if li.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if li.UnitPrice.IsNegative() {
		return ErrInvalidAmount
	}
	if li.TaxRatePercent.IsNegative() {
		return ErrInvalidTaxRate
	}
	if li.Discount != nil && li.Discount.Value.IsNegative() {
		return ErrInvalidDiscount
	}
	switch li.Cess.Kind {
	case CessNone, "":
	case CessValue:
		if li.Cess.RatePercent.IsNegative() {
			return ErrInvalidCess
		}
	case CessQuantity:
		if li.Cess.AmountPerUnit.IsNegative() {
			return ErrInvalidCess
		}
	case CessValueAndQuantity:
		if li.Cess.RatePercent.IsNegative() || li.Cess.AmountPerUnit.IsNegative() {
			return ErrInvalidCess
		}
	default:
		return ErrInvalidCess
	}
	return nil
}

// Compute derives the monetary breakdown for the line:
// gross, discounted base, tax, cess and total, all at full precision.
// Over-discounting is rejected, never clamped, so callers can surface
// the bad input instead of billing a silently adjusted amount.
func (li LineItem) Compute() (LineComputation, error) {
	if err := li.Validate(); err != nil {
		return LineComputation{}, err
	}

	gross := li.UnitPrice.MulInt(li.Quantity)

	base := gross
	if li.Discount != nil {
		switch li.Discount.Type {
		case DiscountPercentage:
			if li.Discount.Value.GreaterThan(oneHundred) {
				return LineComputation{}, ErrInvalidDiscount
			}
			factor := decimal.NewFromInt(1).Sub(li.Discount.Value.Div(oneHundred))
			base = gross.Mul(factor)
		case DiscountFlat:
			if li.Discount.Value.GreaterThan(gross.Amount) {
				return LineComputation{}, ErrInvalidDiscount
			}
			base = Money{Amount: gross.Amount.Sub(li.Discount.Value), Currency: gross.Currency}
		default:
			return LineComputation{}, ErrInvalidDiscount
		}
	}

	tax := base.Mul(li.TaxRatePercent.Div(oneHundred))
	cess := li.computeCess(base)

	total := base
	total, _ = total.Add(tax)
	total, _ = total.Add(cess)

	return LineComputation{
		GrossAmount:    gross,
		DiscountedBase: base,
		TaxAmount:      tax,
		CessAmount:     cess,
		LineTotal:      total,
	}, nil
}

// computeCess evaluates the cess variant against the discounted base.
// The value and quantity parts are summed at full precision, without
// rounding either part first.
func (li LineItem) computeCess(base Money) Money {
	valuePart := ZeroMoney(base.Currency)
	quantityPart := ZeroMoney(base.Currency)

	switch li.Cess.Kind {
	case CessValue:
		valuePart = base.Mul(li.Cess.RatePercent.Div(oneHundred))
	case CessQuantity:
		quantityPart = Money{Amount: li.Cess.AmountPerUnit.Mul(decimal.NewFromInt(li.Quantity)), Currency: base.Currency}
	case CessValueAndQuantity:
		valuePart = base.Mul(li.Cess.RatePercent.Div(oneHundred))
		quantityPart = Money{Amount: li.Cess.AmountPerUnit.Mul(decimal.NewFromInt(li.Quantity)), Currency: base.Currency}
	}

	sum, _ := valuePart.Add(quantityPart)
	return sum
}

// Rounded returns the computation with every field passed through the
// billing round-off, for display or persistence.
func (lc LineComputation) Rounded() LineComputation {
	return LineComputation{
		GrossAmount:    lc.GrossAmount.Round(),
		DiscountedBase: lc.DiscountedBase.Round(),
		TaxAmount:      lc.TaxAmount.Round(),
		CessAmount:     lc.CessAmount.Round(),
		LineTotal:      lc.LineTotal.Round(),
	}
}
