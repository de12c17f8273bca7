// Package satmx provides a public API for Mexican tax helper operations.
//
// It exposes RFC validation and normalization, UDI and exchange rate
// lookups, UDI/peso conversion and CFDI issuance through a billing
// provider, one typed function per operation.
//
// Example usage:
//
//	result := satmx.ValidateRFC("GOMJ-800101-ABC")
//	fmt.Println(result.Category, result.Message)
//
//	client := satmx.NewClient(satmx.DefaultOptions())
//	usd := client.USD(ctx)
//	fmt.Println(usd.Value, usd.Source)
package satmx

import (
	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/model"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

// Re-export core types for public API
type (
	RFCResult        = rfc.Result
	Category         = rfc.Category
	Reading          = model.Reading
	IndicatorKind    = model.IndicatorKind
	Source           = model.Source
	ConversionResult = model.ConversionResult
	Credentials      = model.Credentials
	Provider         = model.Provider
	InvoiceRequest   = model.InvoiceRequest
	InvoiceParams    = cfdi.Params
	InvoiceItem      = cfdi.ItemParams
	InvoiceResponse  = cfdi.Response
	PDFDocument      = cfdi.PDFDocument
	Batch            = dispatch.Batch
	Row              = dispatch.Params
	Result           = dispatch.Result
)

// Re-export RFC categories
const (
	CategoryPersonaFisica  = rfc.CategoryPersonaFisica
	CategoryPersonaMoral   = rfc.CategoryPersonaMoral
	CategoryGenericPublic  = rfc.CategoryGenericPublic
	CategoryGenericForeign = rfc.CategoryGenericForeign
	CategoryInvalid        = rfc.CategoryInvalid
)

// Re-export reading sources
const (
	SourceOfficial  = model.SourceOfficial
	SourceEstimated = model.SourceEstimated
)

// Re-export providers
const (
	ProviderNone      = model.ProviderNone
	ProviderFacturapi = model.ProviderFacturapi
	ProviderFinkok    = model.ProviderFinkok
)

// Re-export error types
type (
	ConfigurationError       = model.ConfigurationError
	UnsupportedProviderError = model.UnsupportedProviderError
	SubmissionError          = model.SubmissionError
	ParamError               = model.ParamError
	RowError                 = model.RowError
)

// Re-export sentinel errors
var (
	ErrMissingCredentials = model.ErrMissingCredentials
	ErrMissingProvider    = model.ErrMissingProvider
	ErrMissingAPIKey      = model.ErrMissingAPIKey
)
