// Package cfdi builds invoice requests and submits them to a billing
// provider.
//
// Provider selection is a closed set: Facturapi issues invoices, Finkok
// is recognized but has no strategy yet, and none is a configuration
// error. Submission failures are surfaced, never retried or estimated.
package cfdi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rezonia/sat-mexico/internal/model"
)

// DefaultFacturapiURL is the Facturapi v2 API root
const DefaultFacturapiURL = "https://www.facturapi.io/v2"

// Response is the provider's decoded JSON answer, passed through as is
type Response map[string]interface{}

// Issuer submits invoices to one provider
type Issuer interface {
	Provider() model.Provider
	// Available fails without network access when the provider cannot issue
	Available() error
	Issue(ctx context.Context, req *model.InvoiceRequest) (Response, error)
	DownloadPDF(ctx context.Context, invoiceID string) ([]byte, error)
}

// Option configures the service
type Option func(*Service)

// WithFacturapiURL overrides the Facturapi API root
func WithFacturapiURL(url string) Option {
	return func(s *Service) {
		s.facturapiURL = url
	}
}

// WithHTTPClient sets the HTTP client used for provider calls
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service resolves an issuer from credentials and runs issuing operations
type Service struct {
	facturapiURL string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewService creates a new CFDI service
func NewService(opts ...Option) *Service {
	s := &Service{
		facturapiURL: DefaultFacturapiURL,
		httpClient:   &http.Client{},
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuerFor picks the issuer variant for creds. Missing or none
// credentials and an empty Facturapi key are configuration errors.
func (s *Service) IssuerFor(creds *model.Credentials) (Issuer, error) {
	if creds == nil {
		return nil, model.NewConfigurationError("provider",
			"configure Facturapi or Finkok credentials to issue CFDI", model.ErrMissingCredentials)
	}

	switch provider := model.ParseProvider(string(creds.Provider)); provider {
	case model.ProviderNone:
		return nil, model.NewConfigurationError("provider",
			"configure Facturapi or Finkok credentials to issue CFDI", model.ErrMissingProvider)
	case model.ProviderFacturapi:
		if creds.FacturapiAPIKey == "" {
			return nil, model.NewConfigurationError("facturapiApiKey",
				"Facturapi API key is required", model.ErrMissingAPIKey)
		}
		return newFacturapiIssuer(s.facturapiURL, creds, s.httpClient, s.logger), nil
	default:
		return unimplementedIssuer{provider: provider}, nil
	}
}

// Issue builds the request for operation and submits it with the
// provider selected by creds
func (s *Service) Issue(ctx context.Context, creds *model.Credentials, operation string, params Params) (Response, error) {
	issuer, err := s.IssuerFor(creds)
	if err != nil {
		return nil, err
	}
	if err := issuer.Available(); err != nil {
		return nil, err
	}

	req, err := Build(operation, params)
	if err != nil {
		return nil, err
	}

	return issuer.Issue(ctx, req)
}

// DownloadPDF fetches the PDF representation of an issued invoice and
// checks that it is a readable PDF
func (s *Service) DownloadPDF(ctx context.Context, creds *model.Credentials, invoiceID string) (*PDFDocument, error) {
	issuer, err := s.IssuerFor(creds)
	if err != nil {
		return nil, err
	}
	if err := issuer.Available(); err != nil {
		return nil, err
	}
	if invoiceID == "" {
		return nil, model.NewParamError("invoiceId", nil, "is required")
	}

	data, err := issuer.DownloadPDF(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	pages, err := InspectPDF(data)
	if err != nil {
		return nil, model.NewSubmissionError(issuer.Provider(), http.StatusOK, "", err)
	}

	return &PDFDocument{
		InvoiceID: invoiceID,
		Bytes:     len(data),
		Pages:     pages,
		Content:   data,
	}, nil
}

// unimplementedIssuer stands for a known provider with no strategy
type unimplementedIssuer struct {
	provider model.Provider
}

func (u unimplementedIssuer) Provider() model.Provider {
	return u.provider
}

func (u unimplementedIssuer) Available() error {
	return model.NewUnsupportedProviderError(u.provider)
}

func (u unimplementedIssuer) Issue(context.Context, *model.InvoiceRequest) (Response, error) {
	return nil, u.Available()
}

func (u unimplementedIssuer) DownloadPDF(context.Context, string) ([]byte, error) {
	return nil, u.Available()
}
