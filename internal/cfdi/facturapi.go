package cfdi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	money "github.com/rezonia/sat-mexico/internal/decimal"
	"github.com/rezonia/sat-mexico/internal/model"
)

// maxErrorBody bounds how much of an error response is kept
const maxErrorBody = 4096

type facturapiInvoice struct {
	Type        string            `json:"type"`
	Customer    facturapiCustomer `json:"customer"`
	Items       []facturapiItem   `json:"items"`
	PaymentForm string            `json:"payment_form"`
	Use         string            `json:"use"`
}

type facturapiCustomer struct {
	LegalName string `json:"legal_name"`
	TaxID     string `json:"tax_id"`
}

type facturapiItem struct {
	Quantity json.Number      `json:"quantity"`
	Product  facturapiProduct `json:"product"`
}

type facturapiProduct struct {
	Description string      `json:"description"`
	ProductKey  string      `json:"product_key"`
	Price       json.Number `json:"price"`
}

// facturapiIssuer talks to the Facturapi REST API. The key selects the
// environment, so sandbox and production share the URL.
type facturapiIssuer struct {
	baseURL     string
	apiKey      string
	environment string
	issuerRFC   string
	httpClient  *http.Client
	logger      *zap.Logger
}

func newFacturapiIssuer(baseURL string, creds *model.Credentials, client *http.Client, logger *zap.Logger) *facturapiIssuer {
	return &facturapiIssuer{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      creds.FacturapiAPIKey,
		environment: creds.FacturapiEnvironment,
		issuerRFC:   creds.IssuerRFC,
		httpClient:  client,
		logger:      logger.With(zap.String("provider", string(model.ProviderFacturapi))),
	}
}

func (f *facturapiIssuer) Provider() model.Provider {
	return model.ProviderFacturapi
}

func (f *facturapiIssuer) Available() error {
	return nil
}

func toFacturapiInvoice(req *model.InvoiceRequest) facturapiInvoice {
	body := facturapiInvoice{
		Type: string(req.Type),
		Customer: facturapiCustomer{
			LegalName: req.Recipient.LegalName,
			TaxID:     req.Recipient.TaxID,
		},
		Items:       make([]facturapiItem, 0, len(req.Items)),
		PaymentForm: req.PaymentForm,
		Use:         req.Use,
	}
	for _, item := range req.Items {
		body.Items = append(body.Items, facturapiItem{
			Quantity: json.Number(item.Quantity.String()),
			Product: facturapiProduct{
				Description: item.Description,
				ProductKey:  item.ProductCode,
				Price:       json.Number(item.UnitPrice.String()),
			},
		})
	}
	return body
}

// Issue posts the invoice once; every failure becomes a SubmissionError
func (f *facturapiIssuer) Issue(ctx context.Context, req *model.InvoiceRequest) (Response, error) {
	payload, err := json.Marshal(toFacturapiInvoice(req))
	if err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, 0, "", fmt.Errorf("failed to marshal invoice: %w", err))
	}

	f.logger.Debug("Submitting invoice",
		zap.String("type", string(req.Type)),
		zap.String("recipient", req.Recipient.TaxID),
		zap.String("environment", f.environment),
		zap.Int("items", len(req.Items)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+f.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	body, err := f.do(httpReq)
	if err != nil {
		f.logger.Error("Invoice submission failed",
			zap.String("recipient", req.Recipient.TaxID),
			zap.Error(err))
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, http.StatusOK, "", fmt.Errorf("malformed response: %w", err))
	}
	if resp == nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, http.StatusOK, "", fmt.Errorf("malformed response: empty body"))
	}

	f.logger.Info("Invoice issued",
		zap.String("type", string(req.Type)),
		zap.String("recipient", req.Recipient.TaxID),
		zap.String("total", req.Total().StringFixed(money.CurrencyPlaces)),
		zap.Any("id", resp["id"]),
		zap.Any("uuid", resp["uuid"]))

	return resp, nil
}

// DownloadPDF fetches GET /invoices/{id}/pdf
func (f *facturapiIssuer) DownloadPDF(ctx context.Context, invoiceID string) ([]byte, error) {
	endpoint := f.baseURL + "/invoices/" + url.PathEscape(invoiceID) + "/pdf"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, 0, "", fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+f.apiKey)
	httpReq.Header.Set("Accept", "application/pdf")

	return f.do(httpReq)
}

// do executes a single attempt and returns the body of a 2xx response
func (f *facturapiIssuer) do(req *http.Request) ([]byte, error) {
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, 0, "", fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewSubmissionError(model.ProviderFacturapi, resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, model.NewSubmissionError(model.ProviderFacturapi, resp.StatusCode, string(body), nil)
	}

	return body, nil
}
