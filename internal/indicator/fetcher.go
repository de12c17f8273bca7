// Package indicator fetches the UDI value and MXN exchange rates and
// converts between UDI and pesos.
//
// Fetching is best effort: any upstream failure degrades to a reading
// tagged model.SourceEstimated instead of an error.
package indicator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	money "github.com/rezonia/sat-mexico/internal/decimal"
	"github.com/rezonia/sat-mexico/internal/model"
)

// Default upstream endpoints
const (
	DefaultExchangeRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultUDIURL          = "https://sidofqa.segob.gob.mx/dof/sidof/indicadores"
)

// Upstream names reported on readings
const (
	ProviderDOF          = "DOF"
	ProviderExchangeRate = "Exchange Rate API"
)

// Fallback values used when an upstream cannot be read
var (
	FallbackUDI       = money.MustFromString("8.25")
	FallbackUSD       = money.MustFromString("17.5")
	FallbackEUR       = money.MustFromString("19.0")
	FallbackEURPerUSD = money.MustFromString("0.92")
)

const estimatedUDINote = "Usar API Banxico con token para datos oficiales"

// Fetcher reads indicators from the configured upstreams. It holds no
// mutable state and can be shared.
type Fetcher struct {
	httpClient      *http.Client
	exchangeRateURL string
	udiURL          string
	logger          *zap.Logger
	now             func() time.Time
}

// Option configures the fetcher
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client. The default client has no timeout;
// callers bound requests through the context.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = client
	}
}

// WithExchangeRateURL overrides the latest-USD-rates endpoint
func WithExchangeRateURL(url string) Option {
	return func(f *Fetcher) {
		f.exchangeRateURL = url
	}
}

// WithUDIURL overrides the UDI endpoint
func WithUDIURL(url string) Option {
	return func(f *Fetcher) {
		f.udiURL = url
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithClock sets the time source used to date readings
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

// NewFetcher creates a new fetcher
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient:      &http.Client{},
		exchangeRateURL: DefaultExchangeRateURL,
		udiURL:          DefaultUDIURL,
		logger:          zap.NewNop(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type udiResponse struct {
	UDI *decimal.Decimal `json:"udi"`
}

type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// UDI returns the current UDI value. It never fails: a network error,
// a non-2xx status, an undecodable body or a missing udi field all yield
// FallbackUDI tagged as estimated.
func (f *Fetcher) UDI(ctx context.Context) model.Reading {
	today := model.NewDate(f.now())

	var body udiResponse
	err := f.getJSON(ctx, f.udiURL, &body)
	if err == nil && (body.UDI == nil || !money.IsPositive(*body.UDI)) {
		err = fmt.Errorf("response has no udi value")
	}
	if err != nil {
		f.logger.Warn("UDI lookup failed, using estimate",
			zap.String("url", f.udiURL),
			zap.String("fallback", FallbackUDI.String()),
			zap.Error(err))
		return model.Reading{
			Kind:   model.IndicatorUDI,
			Value:  FallbackUDI,
			AsOf:   today,
			Source: model.SourceEstimated,
			Note:   estimatedUDINote,
		}
	}

	return model.Reading{
		Kind:     model.IndicatorUDI,
		Value:    *body.UDI,
		AsOf:     today,
		Source:   model.SourceOfficial,
		Provider: ProviderDOF,
	}
}

// ExchangeRate returns pesos per unit of currency (USD or EUR). Any other
// code yields model.UnsupportedCurrency without a network call. EUR is
// derived as MXN-per-USD divided by EUR-per-USD.
func (f *Fetcher) ExchangeRate(ctx context.Context, currency string) model.Reading {
	code := strings.ToUpper(strings.TrimSpace(currency))
	kind := model.IndicatorKind(code)
	if kind != model.IndicatorUSD && kind != model.IndicatorEUR {
		return model.UnsupportedCurrency(code)
	}

	today := model.NewDate(f.now())

	var body ratesResponse
	if err := f.getJSON(ctx, f.exchangeRateURL, &body); err != nil {
		fallback := FallbackEUR
		if kind == model.IndicatorUSD {
			fallback = FallbackUSD
		}
		f.logger.Warn("Exchange rate lookup failed, using estimate",
			zap.String("currency", code),
			zap.String("fallback", fallback.String()),
			zap.Error(err))
		return model.Reading{
			Kind:   kind,
			Value:  fallback,
			AsOf:   today,
			Source: model.SourceEstimated,
		}
	}

	reading := model.Reading{
		Kind:     kind,
		AsOf:     today,
		Source:   model.SourceOfficial,
		Provider: ProviderExchangeRate,
	}

	var defaulted []string
	mxn, ok := body.Rates["MXN"]
	if !ok || !money.IsPositive(mxn) {
		mxn = FallbackUSD
		defaulted = append(defaulted, "MXN")
	}

	if kind == model.IndicatorUSD {
		reading.Value = mxn
	} else {
		eurPerUSD, ok := body.Rates["EUR"]
		if !ok || !money.IsPositive(eurPerUSD) {
			eurPerUSD = FallbackEURPerUSD
			defaulted = append(defaulted, "EUR")
		}
		reading.Value = money.RoundRate(money.Div(mxn, eurPerUSD))
	}

	if len(defaulted) > 0 {
		reading.Note = "default applied for missing rate: " + strings.Join(defaulted, ", ")
		f.logger.Warn("Exchange rate response incomplete",
			zap.String("currency", code),
			zap.Strings("defaulted", defaulted))
	}

	return reading
}

// Ping queries the exchange rate endpoint and reports any failure. It is
// the credential self-test; unlike the lookups it does not fall back.
func (f *Fetcher) Ping(ctx context.Context) error {
	var body ratesResponse
	if err := f.getJSON(ctx, f.exchangeRateURL, &body); err != nil {
		return fmt.Errorf("exchange rate endpoint unreachable: %w", err)
	}
	if len(body.Rates) == 0 {
		return fmt.Errorf("exchange rate endpoint returned no rates")
	}
	return nil
}

// ConvertUDIToPesos fetches the UDI value and converts amount to pesos
func (f *Fetcher) ConvertUDIToPesos(ctx context.Context, amount decimal.Decimal) (model.ConversionResult, error) {
	return Convert(model.DirectionUDIToPesos, amount, f.UDI(ctx))
}

// ConvertPesosToUDI fetches the UDI value and converts amount to UDI
func (f *Fetcher) ConvertPesosToUDI(ctx context.Context, amount decimal.Decimal) (model.ConversionResult, error) {
	return Convert(model.DirectionPesosToUDI, amount, f.UDI(ctx))
}

// getJSON performs a single GET attempt and decodes a 2xx JSON body
func (f *Fetcher) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
