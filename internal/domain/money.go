package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is assumed when callers do not specify one.
const DefaultCurrency = "INR"

var half = decimal.New(5, -1)

// Money is a currency-tagged decimal amount. Arithmetic keeps full
// precision; Round converts a fractional amount into a billable integer
// and is the only place precision is given up.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney creates a Money value. Negative amounts are rejected.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		currency = DefaultCurrency
	}
	if amount.IsNegative() {
		return Money{}, ErrInvalidAmount
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// NewMoneyFromFloat creates a Money value from a float input, rejecting
// NaN and infinities before they can reach decimal conversion.
func NewMoneyFromFloat(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: decimal.Zero, Currency: currency}
}

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}, nil
}

// Sub returns m - other. Currencies must match. The result may be
// negative; callers that require non-negative balances check afterwards.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}, nil
}

// Mul returns m scaled by factor, at full precision.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

// MulInt returns m multiplied by an integer count, at full precision.
func (m Money) MulInt(n int64) Money {
	return m.Mul(decimal.NewFromInt(n))
}

// Round applies the billing round-off rule: fractional part below 0.50
// rounds down, 0.50 and above rounds up. The invariant is
// Round(m) ∈ {floor(m), ceil(m)}.
func (m Money) Round() Money {
	floor := m.Amount.Floor()
	frac := m.Amount.Sub(floor)
	if frac.GreaterThanOrEqual(half) {
		return Money{Amount: m.Amount.Ceil(), Currency: m.Currency}
	}
	return Money{Amount: floor, Currency: m.Currency}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Amount.IsZero() }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount.IsNegative() }

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

// GreaterThan reports whether m exceeds other, ignoring currency.
func (m Money) GreaterThan(other Money) bool {
	return m.Amount.GreaterThan(other.Amount)
}

// Equal reports whether two amounts are numerically equal in the same
// currency.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return m.Amount.String() + " " + m.Currency
}
