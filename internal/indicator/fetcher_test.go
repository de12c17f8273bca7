package indicator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rezonia/sat-mexico/internal/indicator"
	"github.com/rezonia/sat-mexico/internal/model"
)

var fixedNow = time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// unreachableURL returns the URL of a server that has already been closed
func unreachableURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestUDI_Official(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"udi": 8.412345}`)
	f := indicator.NewFetcher(indicator.WithUDIURL(srv.URL), indicator.WithClock(clock))

	reading := f.UDI(context.Background())

	assert.Equal(t, model.IndicatorUDI, reading.Kind)
	assert.Equal(t, model.SourceOfficial, reading.Source)
	assert.True(t, reading.Value.Equal(decimal.RequireFromString("8.412345")))
	assert.Equal(t, "2026-03-14", reading.AsOf.String())
	assert.Equal(t, indicator.ProviderDOF, reading.Provider)
	assert.False(t, reading.IsEstimated())
}

func TestUDI_QuotedValue(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"udi": "8.30"}`)
	f := indicator.NewFetcher(indicator.WithUDIURL(srv.URL))

	reading := f.UDI(context.Background())

	assert.Equal(t, model.SourceOfficial, reading.Source)
	assert.True(t, reading.Value.Equal(decimal.RequireFromString("8.3")))
}

func TestUDI_Fallback(t *testing.T) {
	tests := []struct {
		name string
		url  func(t *testing.T) string
	}{
		{"unreachable", func(t *testing.T) string { return unreachableURL() }},
		{"server error", func(t *testing.T) string { return jsonServer(t, http.StatusInternalServerError, `{}`).URL }},
		{"malformed body", func(t *testing.T) string { return jsonServer(t, http.StatusOK, `<html>`).URL }},
		{"missing field", func(t *testing.T) string { return jsonServer(t, http.StatusOK, `{"dolar": 17.1}`).URL }},
		{"zero value", func(t *testing.T) string { return jsonServer(t, http.StatusOK, `{"udi": 0}`).URL }},
		{"array body", func(t *testing.T) string { return jsonServer(t, http.StatusOK, `[{"udi": 8.1}]`).URL }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := indicator.NewFetcher(indicator.WithUDIURL(tt.url(t)), indicator.WithClock(clock))

			reading := f.UDI(context.Background())

			assert.Equal(t, model.IndicatorUDI, reading.Kind)
			assert.Equal(t, model.SourceEstimated, reading.Source)
			assert.True(t, reading.Value.Equal(indicator.FallbackUDI))
			assert.Equal(t, "8.25", reading.Value.String())
			assert.Equal(t, "2026-03-14", reading.AsOf.String())
			assert.NotEmpty(t, reading.Note)
		})
	}
}

func TestUDI_FallbackIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := indicator.NewFetcher(
		indicator.WithUDIURL(unreachableURL()),
		indicator.WithLogger(zap.New(core)),
	)

	f.UDI(context.Background())

	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "UDI lookup failed")
}

func TestExchangeRate_USD(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"base":"USD","rates":{"MXN":18.2345,"EUR":0.9}}`)
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL), indicator.WithClock(clock))

	reading := f.ExchangeRate(context.Background(), "USD")

	assert.Equal(t, model.IndicatorUSD, reading.Kind)
	assert.Equal(t, model.SourceOfficial, reading.Source)
	assert.Equal(t, indicator.ProviderExchangeRate, reading.Provider)
	assert.True(t, reading.Value.Equal(decimal.RequireFromString("18.2345")))
	assert.Empty(t, reading.Note)
}

func TestExchangeRate_EUR(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"base":"USD","rates":{"MXN":18,"EUR":0.9}}`)
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL))

	reading := f.ExchangeRate(context.Background(), "eur")

	assert.Equal(t, model.IndicatorEUR, reading.Kind)
	assert.Equal(t, model.SourceOfficial, reading.Source)
	assert.True(t, reading.Value.Equal(decimal.NewFromInt(20)))
}

func TestExchangeRate_InlineDefaults(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"base":"USD","rates":{"JPY":150}}`)
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL))

	usd := f.ExchangeRate(context.Background(), "USD")
	assert.Equal(t, model.SourceOfficial, usd.Source)
	assert.True(t, usd.Value.Equal(indicator.FallbackUSD))
	assert.Contains(t, usd.Note, "MXN")

	// 17.5 / 0.92
	eur := f.ExchangeRate(context.Background(), "EUR")
	assert.Equal(t, model.SourceOfficial, eur.Source)
	assert.Equal(t, "19.021739", eur.Value.String())
	assert.Contains(t, eur.Note, "EUR")
}

func TestExchangeRate_Unreachable(t *testing.T) {
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(unreachableURL()), indicator.WithClock(clock))

	usd := f.ExchangeRate(context.Background(), "USD")
	assert.Equal(t, model.SourceEstimated, usd.Source)
	assert.Equal(t, "17.5", usd.Value.String())
	assert.Equal(t, "2026-03-14", usd.AsOf.String())

	eur := f.ExchangeRate(context.Background(), "EUR")
	assert.Equal(t, model.SourceEstimated, eur.Source)
	assert.True(t, eur.Value.Equal(decimal.NewFromInt(19)))
}

func TestExchangeRate_ServerError(t *testing.T) {
	srv := jsonServer(t, http.StatusServiceUnavailable, `{"rates":{"MXN":18}}`)
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL))

	reading := f.ExchangeRate(context.Background(), "USD")

	assert.True(t, reading.IsEstimated())
	assert.True(t, reading.Value.Equal(indicator.FallbackUSD))
}

func TestExchangeRate_Unsupported(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"rates":{"MXN":18,"GBP":0.8}}`))
	}))
	defer srv.Close()
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL))

	reading := f.ExchangeRate(context.Background(), "GBP")

	assert.True(t, reading.Unsupported())
	assert.Equal(t, model.IndicatorKind("GBP"), reading.Kind)
	assert.Contains(t, reading.Error, "unsupported currency")
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	data, err := json.Marshal(reading)
	require.NoError(t, err)
	assert.JSONEq(t, `{"indicator":"GBP","error":"unsupported currency: GBP"}`, string(data))
}

func TestExchangeRate_CancelledContext(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"rates":{"MXN":18}}`)
	f := indicator.NewFetcher(indicator.WithExchangeRateURL(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reading := f.ExchangeRate(ctx, "USD")
	assert.True(t, reading.IsEstimated())
}

func TestPing(t *testing.T) {
	ok := jsonServer(t, http.StatusOK, `{"base":"USD","rates":{"MXN":18}}`)
	require.NoError(t, indicator.NewFetcher(indicator.WithExchangeRateURL(ok.URL)).Ping(context.Background()))

	empty := jsonServer(t, http.StatusOK, `{"base":"USD"}`)
	require.Error(t, indicator.NewFetcher(indicator.WithExchangeRateURL(empty.URL)).Ping(context.Background()))

	require.Error(t, indicator.NewFetcher(indicator.WithExchangeRateURL(unreachableURL())).Ping(context.Background()))
}

func TestConvertUDIToPesos_UsesFetchedRate(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"udi": 8.5}`)
	f := indicator.NewFetcher(indicator.WithUDIURL(srv.URL), indicator.WithClock(clock))

	result, err := f.ConvertUDIToPesos(context.Background(), decimal.NewFromInt(100))
	require.NoError(t, err)

	assert.Equal(t, model.DirectionUDIToPesos, result.Direction)
	assert.Equal(t, "850", result.Output.String())
	assert.Equal(t, model.SourceOfficial, result.RateSource)
	assert.Equal(t, "2026-03-14", result.AsOf.String())
}

func TestConvertPesosToUDI_FallbackRate(t *testing.T) {
	f := indicator.NewFetcher(indicator.WithUDIURL(unreachableURL()))

	result, err := f.ConvertPesosToUDI(context.Background(), decimal.NewFromInt(8250))
	require.NoError(t, err)

	assert.Equal(t, "1000.000000", result.Output.StringFixed(6))
	assert.True(t, result.Rate.Equal(indicator.FallbackUDI))
	assert.Equal(t, model.SourceEstimated, result.RateSource)
}
