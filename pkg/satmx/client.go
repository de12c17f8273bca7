package satmx

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/indicator"
	"github.com/rezonia/sat-mexico/internal/model"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

// ValidateRFC classifies a taxpayer identifier. Invalid input is a
// normal result, never an error.
func ValidateRFC(id string) RFCResult {
	return rfc.Classify(id)
}

// FormatRFC uppercases id and removes whitespace and hyphens
func FormatRFC(id string) string {
	return rfc.Format(id)
}

// CleanRFC uppercases id and keeps only A-Z, Ñ, & and 0-9
func CleanRFC(id string) string {
	return rfc.Clean(id)
}

// UDIToPesos converts with a known rate, rounded to 2 decimal places
func UDIToPesos(udi, rate decimal.Decimal) decimal.Decimal {
	return indicator.UDIToPesos(udi, rate)
}

// PesosToUDI converts with a known rate, rounded to 6 decimal places
func PesosToUDI(pesos, rate decimal.Decimal) decimal.Decimal {
	return indicator.PesosToUDI(pesos, rate)
}

// Options configures a Client
type Options struct {
	ExchangeRateURL string
	UDIURL          string
	FacturapiURL    string

	// Credentials are used for CFDI operations; nil means none configured
	Credentials *Credentials

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// DefaultOptions returns options pointing at the public endpoints
func DefaultOptions() Options {
	return Options{
		ExchangeRateURL: indicator.DefaultExchangeRateURL,
		UDIURL:          indicator.DefaultUDIURL,
		FacturapiURL:    cfdi.DefaultFacturapiURL,
	}
}

// Client runs the network-backed operations
type Client struct {
	fetcher     *indicator.Fetcher
	invoices    *cfdi.Service
	dispatcher  *dispatch.Dispatcher
	credentials *Credentials
}

// NewClient creates a client with the given options
func NewClient(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fetcherOpts := []indicator.Option{indicator.WithLogger(logger)}
	serviceOpts := []cfdi.Option{cfdi.WithLogger(logger)}
	if opts.ExchangeRateURL != "" {
		fetcherOpts = append(fetcherOpts, indicator.WithExchangeRateURL(opts.ExchangeRateURL))
	}
	if opts.UDIURL != "" {
		fetcherOpts = append(fetcherOpts, indicator.WithUDIURL(opts.UDIURL))
	}
	if opts.FacturapiURL != "" {
		serviceOpts = append(serviceOpts, cfdi.WithFacturapiURL(opts.FacturapiURL))
	}
	if opts.HTTPClient != nil {
		fetcherOpts = append(fetcherOpts, indicator.WithHTTPClient(opts.HTTPClient))
		serviceOpts = append(serviceOpts, cfdi.WithHTTPClient(opts.HTTPClient))
	}

	fetcher := indicator.NewFetcher(fetcherOpts...)
	invoices := cfdi.NewService(serviceOpts...)

	return &Client{
		fetcher:     fetcher,
		invoices:    invoices,
		credentials: opts.Credentials,
		dispatcher: dispatch.New(
			dispatch.WithFetcher(fetcher),
			dispatch.WithCFDIService(invoices),
			dispatch.WithCredentials(opts.Credentials),
			dispatch.WithLogger(logger),
		),
	}
}

// UDI returns the current UDI value, estimated when the source fails
func (c *Client) UDI(ctx context.Context) Reading {
	return c.fetcher.UDI(ctx)
}

// USD returns pesos per US dollar, estimated when the source fails
func (c *Client) USD(ctx context.Context) Reading {
	return c.fetcher.ExchangeRate(ctx, string(model.IndicatorUSD))
}

// EUR returns pesos per euro, estimated when the source fails
func (c *Client) EUR(ctx context.Context) Reading {
	return c.fetcher.ExchangeRate(ctx, string(model.IndicatorEUR))
}

// ExchangeRate returns pesos per unit of currency. Unsupported codes
// yield a reading whose Error is set.
func (c *Client) ExchangeRate(ctx context.Context, currency string) Reading {
	return c.fetcher.ExchangeRate(ctx, currency)
}

// ConvertUDIToPesos converts amount at the current UDI value
func (c *Client) ConvertUDIToPesos(ctx context.Context, amount decimal.Decimal) (ConversionResult, error) {
	return c.fetcher.ConvertUDIToPesos(ctx, amount)
}

// ConvertPesosToUDI converts amount at the current UDI value
func (c *Client) ConvertPesosToUDI(ctx context.Context, amount decimal.Decimal) (ConversionResult, error) {
	return c.fetcher.ConvertPesosToUDI(ctx, amount)
}

// IssueInvoice issues an income CFDI
func (c *Client) IssueInvoice(ctx context.Context, params InvoiceParams) (InvoiceResponse, error) {
	return c.invoices.Issue(ctx, c.credentials, model.OperationInvoice, params)
}

// IssueCreditNote issues an expense CFDI
func (c *Client) IssueCreditNote(ctx context.Context, params InvoiceParams) (InvoiceResponse, error) {
	return c.invoices.Issue(ctx, c.credentials, model.OperationCreditNote, params)
}

// DownloadPDF fetches and validates the PDF of an issued invoice
func (c *Client) DownloadPDF(ctx context.Context, invoiceID string) (*PDFDocument, error) {
	return c.invoices.DownloadPDF(ctx, c.credentials, invoiceID)
}

// TestConnection queries the exchange rate source and reports any failure
func (c *Client) TestConnection(ctx context.Context) error {
	return c.fetcher.Ping(ctx)
}

// Run processes a batch in input order
func (c *Client) Run(ctx context.Context, batch Batch) ([]Result, error) {
	return c.dispatcher.Run(ctx, batch)
}
