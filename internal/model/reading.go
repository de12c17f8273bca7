package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IndicatorKind identifies a financial indicator
type IndicatorKind string

const (
	IndicatorUDI IndicatorKind = "UDI"
	IndicatorUSD IndicatorKind = "USD"
	IndicatorEUR IndicatorKind = "EUR"
)

// Source tells whether a reading came from an upstream or is a fallback
type Source string

const (
	SourceOfficial  Source = "official"
	SourceEstimated Source = "estimated"
)

// DateLayout is the calendar date format used in readings
const DateLayout = "2006-01-02"

// Date is a calendar date in UTC
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar date
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Reading is a single indicator value, produced fresh per request
type Reading struct {
	Kind     IndicatorKind   `json:"indicator"`
	Value    decimal.Decimal `json:"value"`
	AsOf     Date            `json:"as_of"`
	Source   Source          `json:"source"`
	Provider string          `json:"provider,omitempty"`
	Note     string          `json:"note,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// IsEstimated reports whether the reading is a fallback value
func (r Reading) IsEstimated() bool {
	return r.Source == SourceEstimated
}

// Unsupported reports whether the reading stands for an unsupported currency
func (r Reading) Unsupported() bool {
	return r.Error != ""
}

// MarshalJSON drops value, date and source from an unsupported result
// so no consumer mistakes it for a zero rate.
func (r Reading) MarshalJSON() ([]byte, error) {
	if r.Unsupported() {
		return json.Marshal(struct {
			Kind  IndicatorKind `json:"indicator"`
			Error string        `json:"error"`
		}{r.Kind, r.Error})
	}
	type plain Reading
	return json.Marshal(plain(r))
}

// UnsupportedCurrency is the soft result for a currency with no rate source
func UnsupportedCurrency(code string) Reading {
	return Reading{
		Kind:  IndicatorKind(code),
		Error: "unsupported currency: " + code,
	}
}

// Direction of a UDI conversion
type Direction string

const (
	DirectionUDIToPesos Direction = "udi_pesos"
	DirectionPesosToUDI Direction = "pesos_udi"
)

// ConversionResult is a derived value; Output is already rounded
type ConversionResult struct {
	Direction  Direction       `json:"direction"`
	Input      decimal.Decimal `json:"input_amount"`
	Rate       decimal.Decimal `json:"rate"`
	Output     decimal.Decimal `json:"output_amount"`
	AsOf       Date            `json:"as_of"`
	RateSource Source          `json:"rate_source,omitempty"`
}
