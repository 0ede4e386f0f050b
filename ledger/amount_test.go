package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestAmountArithmetic(t *testing.T) {
	a := NewAmount(10, "USD")
	b := NewAmount(4, "USD")

	if got := a.Add(b); !got.Equal(NewAmount(14, "USD")) {
		t.Errorf("Add: got %s", got)
	}
	if got := a.Sub(b); !got.Equal(NewAmount(6, "USD")) {
		t.Errorf("Sub: got %s", got)
	}
	if got := a.Neg(); !got.Equal(NewAmount(-10, "USD")) {
		t.Errorf("Neg: got %s", got)
	}

	// Running sums may start from the zero value.
	var sum Amount
	sum = sum.Add(a)
	if sum.Currency != "USD" {
		t.Errorf("zero value should adopt the operand currency, got %q", sum.Currency)
	}
}

func TestAmountMixedCurrencyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic adding USD to EUR")
		}
	}()
	NewAmount(10, "USD").Add(NewAmount(5, "EUR"))
}

func TestAmountMagnitude(t *testing.T) {
	if !NewAmount(-142, "USD").MagnitudeGTE(NewAmount(100, "USD")) {
		t.Error("|-142| >= |100| should hold")
	}
	if NewAmount(58, "USD").MagnitudeGTE(NewAmount(100, "USD")) {
		t.Error("|58| >= |100| should not hold")
	}
}

func TestAmountConvert(t *testing.T) {
	rates := func(date Date, from, to string) (decimal.Decimal, error) {
		if from == "EUR" && to == "USD" {
			return decimal.NewFromFloat(1.25), nil
		}
		return decimal.Zero, errors.New("unknown pair")
	}

	got, err := NewAmount(40, "EUR").Convert(rates, NewDate(2024, time.March, 1), "USD")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewAmount(50, "USD")) {
		t.Errorf("got %s", got)
	}

	// Same currency never needs a rate.
	got, err = NewAmount(40, "USD").Convert(nil, NewDate(2024, time.March, 1), "USD")
	if err != nil || !got.Equal(NewAmount(40, "USD")) {
		t.Errorf("same-currency convert: %s, %v", got, err)
	}

	// Unconvertible pairs surface a typed error.
	_, err = NewAmount(40, "GBP").Convert(rates, NewDate(2024, time.March, 1), "USD")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if convErr.From != "GBP" || convErr.To != "USD" {
		t.Errorf("error pair %s->%s", convErr.From, convErr.To)
	}
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("123.45", "USD")
	if err != nil {
		t.Fatal(err)
	}
	if a.Value.String() != "123.45" {
		t.Errorf("got %s", a.Value)
	}
	if _, err := ParseAmount("not-a-number", "USD"); err == nil {
		t.Error("expected parse error")
	}
}
