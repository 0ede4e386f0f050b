package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Signed decimal value with a currency
// =============================================================================

// Amount is a monetary value: a signed decimal plus a currency code.
//
// Arithmetic requires same-currency operands; mixing currencies without an
// explicit Convert step is a programming error and panics. A zero-value
// Amount (empty currency) acts as a universal zero for Add/Sub so running
// sums can start from it.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

func NewAmount(value float64, currency string) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Currency: currency}
}

func NewAmountFromInt(value int, currency string) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Currency: currency}
}

func AmountFromDecimal(value decimal.Decimal, currency string) Amount {
	return Amount{Value: value, Currency: currency}
}

// ParseAmount parses a decimal string into an Amount.
func ParseAmount(value, currency string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Amount{Value: d, Currency: currency}, nil
}

func (a Amount) Zero() Amount { return Amount{Value: decimal.Zero, Currency: a.Currency} }

func (a Amount) Add(b Amount) Amount {
	return Amount{Value: a.Value.Add(b.Value), Currency: a.mergeCurrency(b)}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{Value: a.Value.Sub(b.Value), Currency: a.mergeCurrency(b)}
}

func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Currency: a.Currency} }
func (a Amount) Abs() Amount                  { return Amount{Value: a.Value.Abs(), Currency: a.Currency} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Currency: a.Currency} }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }

func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

// MagnitudeGTE reports whether |a| >= |b|. Same-currency only.
func (a Amount) MagnitudeGTE(b Amount) bool {
	a.mergeCurrency(b)
	return a.Value.Abs().GreaterThanOrEqual(b.Value.Abs())
}

func (a Amount) mergeCurrency(b Amount) string {
	if a.Currency == "" {
		return b.Currency
	}
	if b.Currency != "" && a.Currency != b.Currency {
		panic(fmt.Sprintf("currency mismatch: %s vs %s", a.Currency, b.Currency))
	}
	return a.Currency
}

func (a Amount) String() string {
	if a.Currency == "" {
		return a.Value.String()
	}
	return a.Value.String() + " " + a.Currency
}

// =============================================================================
// CURRENCY CONVERSION
// =============================================================================

// RateFunc returns the exchange rate from one currency to another on a given
// date. The engine never guesses rates; an unknown pair must return an error.
type RateFunc func(date Date, from, to string) (decimal.Decimal, error)

// Convert expresses the amount in `currency`, using the rate at `date`.
// Converting to the amount's own currency is a no-op and never fails.
func (a Amount) Convert(rate RateFunc, date Date, currency string) (Amount, error) {
	if a.Currency == currency || a.Currency == "" || a.IsZero() {
		return Amount{Value: a.Value, Currency: currency}, nil
	}
	if rate == nil {
		return Amount{}, &ConversionError{Date: date, From: a.Currency, To: currency}
	}
	r, err := rate(date, a.Currency, currency)
	if err != nil {
		return Amount{}, &ConversionError{Date: date, From: a.Currency, To: currency, Err: err}
	}
	return Amount{Value: a.Value.Mul(r), Currency: currency}, nil
}
