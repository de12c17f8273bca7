package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rezonia/sat-mexico/internal/decimal"
)

func TestMustFromString(t *testing.T) {
	d := decimal.MustFromString("17.5")
	assert.True(t, d.Equal(dec.RequireFromString("17.5")))

	assert.Panics(t, func() {
		decimal.MustFromString("invalid")
	})
}

func TestDiv(t *testing.T) {
	result := decimal.Div(dec.NewFromInt(100), dec.NewFromInt(4))
	assert.Equal(t, "25", result.String())

	// Division by zero returns zero
	result = decimal.Div(dec.NewFromInt(100), dec.Zero)
	assert.True(t, result.IsZero())
}

func TestRounding(t *testing.T) {
	d := dec.RequireFromString("1234.5678915")

	assert.Equal(t, "1234.57", decimal.RoundCurrency(d).String())
	assert.Equal(t, "1234.567892", decimal.RoundUDI(d).String())
	assert.Equal(t, "1234.567892", decimal.RoundRate(d).String())
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.RequireFromString("0.25"),
		dec.RequireFromString("0.75"),
	}
	assert.True(t, decimal.Sum(values).Equal(dec.NewFromInt(101)))
	assert.True(t, decimal.Sum(nil).IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(dec.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, decimal.IsNonNegative(dec.NewFromInt(1)))
	assert.True(t, decimal.IsNonNegative(dec.Zero))
	assert.False(t, decimal.IsNonNegative(dec.NewFromInt(-1)))
}
