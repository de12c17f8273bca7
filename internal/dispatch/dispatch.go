// Package dispatch routes a batch of rows to the RFC, indicator and CFDI
// operations selected by a (resource, operation) pair.
//
// Rows are processed strictly in input order, one at a time. A failing
// row either aborts the batch or, in continue-on-fail mode, is replaced
// by an error record.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	money "github.com/rezonia/sat-mexico/internal/decimal"
	"github.com/rezonia/sat-mexico/internal/indicator"
	"github.com/rezonia/sat-mexico/internal/model"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

// Resources
const (
	ResourceRFC        = "rfc"
	ResourceIndicators = "indicadores"
	ResourceCFDI       = "cfdi"
)

// Operations, scoped to their resource
const (
	OpValidate = "validar"
	OpFormat   = "formatear"
	OpClean    = "limpiar"

	OpUDI        = "udi"
	OpUSD        = "usd"
	OpEUR        = "eur"
	OpUDIToPesos = string(model.DirectionUDIToPesos)
	OpPesosToUDI = string(model.DirectionPesosToUDI)

	OpInvoice     = model.OperationInvoice
	OpCreditNote  = model.OperationCreditNote
	OpDownloadPDF = "descargar_pdf"
)

var operations = map[string][]string{
	ResourceRFC:        {OpValidate, OpFormat, OpClean},
	ResourceIndicators: {OpUDI, OpUSD, OpEUR, OpUDIToPesos, OpPesosToUDI},
	ResourceCFDI:       {OpInvoice, OpCreditNote, OpDownloadPDF},
}

// Resources lists the known resources in sorted order
func Resources() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Operations lists the operations of resource
func Operations(resource string) []string {
	return append([]string(nil), operations[resource]...)
}

// Supported reports whether operation belongs to resource
func Supported(resource, operation string) bool {
	for _, op := range operations[resource] {
		if op == operation {
			return true
		}
	}
	return false
}

// Params are the named parameters of one input row. Only the fields the
// selected operation reads need to be set.
type Params struct {
	RFC         string           `json:"rfc,omitempty"`
	AmountUDI   *decimal.Decimal `json:"montoUdi,omitempty"`
	AmountPesos *decimal.Decimal `json:"montoPesos,omitempty"`
	InvoiceID   string           `json:"invoiceId,omitempty"`

	cfdi.Params

	// Credentials override the dispatcher's credentials for this row
	Credentials *model.Credentials `json:"credentials,omitempty"`
}

// Batch is a selector plus the rows to run it on
type Batch struct {
	Resource       string   `json:"resource"`
	Operation      string   `json:"operation"`
	ContinueOnFail bool     `json:"continueOnFail"`
	Rows           []Params `json:"rows"`
}

// NormalizedRFC is the output of the format and clean operations
type NormalizedRFC struct {
	RFC string `json:"rfc"`
}

// Result is one output row: the operation's value, or the error that
// replaced it in continue-on-fail mode
type Result struct {
	Value interface{}
	Err   error
}

// Failed reports whether the row was replaced by an error record
func (r Result) Failed() bool {
	return r.Err != nil
}

// MarshalJSON writes the value, or {"error": message} for a failed row
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(map[string]string{"error": r.Err.Error()})
	}
	return json.Marshal(r.Value)
}

// Option configures the dispatcher
type Option func(*Dispatcher)

// WithFetcher sets the indicator fetcher
func WithFetcher(fetcher *indicator.Fetcher) Option {
	return func(d *Dispatcher) {
		d.fetcher = fetcher
	}
}

// WithCFDIService sets the invoice service
func WithCFDIService(service *cfdi.Service) Option {
	return func(d *Dispatcher) {
		d.invoices = service
	}
}

// WithCredentials sets the credentials used by rows without their own
func WithCredentials(creds *model.Credentials) Option {
	return func(d *Dispatcher) {
		d.credentials = creds
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Dispatcher runs batches. It holds no per-row state.
type Dispatcher struct {
	fetcher     *indicator.Fetcher
	invoices    *cfdi.Service
	credentials *model.Credentials
	logger      *zap.Logger
}

// New creates a dispatcher
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fetcher == nil {
		d.fetcher = indicator.NewFetcher(indicator.WithLogger(d.logger))
	}
	if d.invoices == nil {
		d.invoices = cfdi.NewService(cfdi.WithLogger(d.logger))
	}
	return d
}

// Run processes every row of b in order. On an aborting failure it
// returns the results produced so far together with a *model.RowError
// whose Row is the 1-based position of the failing row.
func (d *Dispatcher) Run(ctx context.Context, b Batch) ([]Result, error) {
	if !Supported(b.Resource, b.Operation) {
		return nil, unsupportedSelector(b.Resource, b.Operation)
	}

	logger := d.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("resource", b.Resource),
		zap.String("operation", b.Operation))
	logger.Debug("Starting batch", zap.Int("rows", len(b.Rows)), zap.Bool("continue_on_fail", b.ContinueOnFail))

	results := make([]Result, 0, len(b.Rows))
	for i, row := range b.Rows {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch cancelled", zap.Int("row", i+1), zap.Error(err))
			return results, &model.RowError{Row: i + 1, Cause: err}
		}

		value, err := d.Execute(ctx, b.Resource, b.Operation, row)
		if err != nil {
			logger.Warn("Row failed", zap.Int("row", i+1), zap.Error(err))
			if !b.ContinueOnFail {
				return results, &model.RowError{Row: i + 1, Cause: err}
			}
			results = append(results, Result{Err: err})
			continue
		}
		results = append(results, Result{Value: value})
	}

	logger.Debug("Batch finished", zap.Int("results", len(results)))
	return results, nil
}

// Execute runs a single operation on one row of parameters
func (d *Dispatcher) Execute(ctx context.Context, resource, operation string, p Params) (interface{}, error) {
	switch resource {
	case ResourceRFC:
		return d.executeRFC(operation, p)
	case ResourceIndicators:
		return d.executeIndicator(ctx, operation, p)
	case ResourceCFDI:
		return d.executeCFDI(ctx, operation, p)
	default:
		return nil, unsupportedSelector(resource, operation)
	}
}

func (d *Dispatcher) executeRFC(operation string, p Params) (interface{}, error) {
	switch operation {
	case OpValidate:
		return rfc.Classify(p.RFC), nil
	case OpFormat:
		return NormalizedRFC{RFC: rfc.Format(p.RFC)}, nil
	case OpClean:
		return NormalizedRFC{RFC: rfc.Clean(p.RFC)}, nil
	default:
		return nil, unsupportedSelector(ResourceRFC, operation)
	}
}

func (d *Dispatcher) executeIndicator(ctx context.Context, operation string, p Params) (interface{}, error) {
	switch operation {
	case OpUDI:
		return d.fetcher.UDI(ctx), nil
	case OpUSD:
		return d.fetcher.ExchangeRate(ctx, string(model.IndicatorUSD)), nil
	case OpEUR:
		return d.fetcher.ExchangeRate(ctx, string(model.IndicatorEUR)), nil
	case OpUDIToPesos:
		amount, err := requireAmount("montoUdi", p.AmountUDI)
		if err != nil {
			return nil, err
		}
		return d.fetcher.ConvertUDIToPesos(ctx, amount)
	case OpPesosToUDI:
		amount, err := requireAmount("montoPesos", p.AmountPesos)
		if err != nil {
			return nil, err
		}
		return d.fetcher.ConvertPesosToUDI(ctx, amount)
	default:
		return nil, unsupportedSelector(ResourceIndicators, operation)
	}
}

func (d *Dispatcher) executeCFDI(ctx context.Context, operation string, p Params) (interface{}, error) {
	creds := d.credentials
	if p.Credentials != nil {
		creds = p.Credentials
	}

	switch operation {
	case OpInvoice, OpCreditNote:
		return d.invoices.Issue(ctx, creds, operation, p.Params)
	case OpDownloadPDF:
		return d.invoices.DownloadPDF(ctx, creds, p.InvoiceID)
	default:
		return nil, unsupportedSelector(ResourceCFDI, operation)
	}
}

func requireAmount(name string, amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Zero, model.NewParamError(name, nil, "is required")
	}
	if !money.IsNonNegative(*amount) {
		return decimal.Zero, model.NewParamError(name, amount.String(), "must not be negative")
	}
	return *amount, nil
}

func unsupportedSelector(resource, operation string) error {
	if _, ok := operations[resource]; !ok {
		return model.NewParamError("resource", resource, fmt.Sprintf("expected one of [%s]", strings.Join(Resources(), ", ")))
	}
	return model.NewParamError("operation", operation, fmt.Sprintf("expected one of [%s] for %s", strings.Join(Operations(resource), ", "), resource))
}
