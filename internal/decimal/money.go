package decimal

import (
	"github.com/shopspring/decimal"
)

// Rounding precision per unit
const (
	CurrencyPlaces int32 = 2
	UDIPlaces      int32 = 6
	RatePlaces     int32 = 6
)

// Zero is decimal zero
var Zero = decimal.Zero

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Div divides a by b without rounding. Division by zero returns zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.Div(b)
}

// RoundCurrency rounds to centavos
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// RoundUDI rounds to UDI precision
func RoundUDI(d decimal.Decimal) decimal.Decimal {
	return d.Round(UDIPlaces)
}

// RoundRate rounds a derived exchange rate
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RatePlaces)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}
