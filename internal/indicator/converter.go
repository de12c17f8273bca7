package indicator

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/sat-mexico/internal/decimal"
	"github.com/rezonia/sat-mexico/internal/model"
)

// UDIToPesos converts UDI to pesos, rounded to 2 decimal places
func UDIToPesos(udi, rate decimal.Decimal) decimal.Decimal {
	return money.RoundCurrency(udi.Mul(rate))
}

// PesosToUDI converts pesos to UDI, rounded to 6 decimal places.
// The two conversions are not exact inverses of each other.
func PesosToUDI(pesos, rate decimal.Decimal) decimal.Decimal {
	return money.RoundUDI(money.Div(pesos, rate))
}

// Convert applies direction to amount using the reading's value as the rate
func Convert(direction model.Direction, amount decimal.Decimal, rate model.Reading) (model.ConversionResult, error) {
	if !money.IsPositive(rate.Value) {
		return model.ConversionResult{}, model.NewParamError("rate", rate.Value.String(), "must be greater than zero")
	}

	result := model.ConversionResult{
		Direction:  direction,
		Input:      amount,
		Rate:       rate.Value,
		AsOf:       rate.AsOf,
		RateSource: rate.Source,
	}

	switch direction {
	case model.DirectionUDIToPesos:
		result.Output = UDIToPesos(amount, rate.Value)
	case model.DirectionPesosToUDI:
		result.Output = PesosToUDI(amount, rate.Value)
	default:
		return model.ConversionResult{}, model.NewParamError("direction", string(direction), "unknown conversion")
	}

	return result, nil
}
