// Package types - Money and rate helpers
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// MinorUnitPlaces is the number of decimal places of the currency's minor unit
const MinorUnitPlaces int32 = 2

// RoundCents rounds an amount to the minor unit (half away from zero)
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// MustDecimal parses a decimal literal from reference data.
// Panics on malformed input since tables are compiled into the binary.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("types: invalid decimal literal " + s + ": " + err.Error())
	}
	return d
}

// DecimalPtr returns a pointer to a parsed decimal literal
func DecimalPtr(s string) *decimal.Decimal {
	d := MustDecimal(s)
	return &d
}

// Clamp bounds d into [lo, hi]; nil bounds are open.
// Reports whether d was changed.
func Clamp(d decimal.Decimal, lo, hi *decimal.Decimal) (decimal.Decimal, bool) {
	if lo != nil && d.LessThan(*lo) {
		return *lo, true
	}
	if hi != nil && d.GreaterThan(*hi) {
		return *hi, true
	}
	return d, false
}

// Sum adds amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
