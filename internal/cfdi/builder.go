package cfdi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/sat-mexico/internal/decimal"
	"github.com/rezonia/sat-mexico/internal/model"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

// Params are the raw invoice parameters of a single row
type Params struct {
	RecipientRFC string   `json:"rfcReceptor"`
	LegalName    string   `json:"razonSocial"`
	Usage        string   `json:"usoCfdi"`
	PaymentForm  string   `json:"formaPago"`
	Items        ItemList `json:"items"`
}

// ItemParams is one raw line item. Zero values are replaced by defaults.
type ItemParams struct {
	Description string           `json:"descripcion"`
	Quantity    *decimal.Decimal `json:"cantidad,omitempty"`
	UnitPrice   decimal.Decimal  `json:"precioUnitario"`
	ProductCode string           `json:"claveSat"`
}

// ItemList accepts either a plain array or a collection object {"item": [...]}
type ItemList []ItemParams

func (l *ItemList) UnmarshalJSON(data []byte) error {
	var items []ItemParams
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var collection struct {
		Item []ItemParams `json:"item"`
	}
	if err := json.Unmarshal(data, &collection); err != nil {
		return fmt.Errorf("items must be an array or an {\"item\": [...]} object: %w", err)
	}
	*l = collection.Item
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Build shapes a provider-agnostic invoice request from row parameters.
// The document type comes from the operation: factura is an income
// invoice, nota_credito an expense invoice.
func Build(operation string, p Params) (*model.InvoiceRequest, error) {
	docType, ok := model.DocumentTypeFor(operation)
	if !ok {
		return nil, model.NewParamError("operation", operation, "expected factura or nota_credito")
	}

	req := &model.InvoiceRequest{
		Type: docType,
		Recipient: model.Recipient{
			TaxID:     rfc.Format(p.RecipientRFC),
			LegalName: strings.TrimSpace(p.LegalName),
		},
		Use:         strings.ToUpper(strings.TrimSpace(p.Usage)),
		PaymentForm: strings.TrimSpace(p.PaymentForm),
		Items:       make([]model.LineItem, 0, len(p.Items)),
	}

	if req.Use == "" {
		req.Use = model.DefaultUsage
	}
	if _, ok := model.UsageCodes[req.Use]; !ok {
		return nil, model.NewParamError("usoCfdi", req.Use, "not a known CFDI usage code")
	}

	if req.PaymentForm == "" {
		req.PaymentForm = model.DefaultPaymentForm
	}
	if _, ok := model.PaymentForms[req.PaymentForm]; !ok {
		return nil, model.NewParamError("formaPago", req.PaymentForm, "not a known payment form")
	}

	for i, item := range p.Items {
		line := model.LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   item.UnitPrice,
			ProductCode: strings.TrimSpace(item.ProductCode),
		}
		if item.Quantity != nil {
			line.Quantity = *item.Quantity
		}
		if line.ProductCode == "" {
			line.ProductCode = model.DefaultProductCode
		}

		if !money.IsPositive(line.Quantity) {
			return nil, model.NewParamError(fmt.Sprintf("items[%d].cantidad", i), line.Quantity.String(), "must be greater than zero")
		}
		if !money.IsNonNegative(line.UnitPrice) {
			return nil, model.NewParamError(fmt.Sprintf("items[%d].precioUnitario", i), line.UnitPrice.String(), "must not be negative")
		}
		req.Items = append(req.Items, line)
	}

	if err := validate.Struct(req); err != nil {
		return nil, toParamError(err)
	}

	return req, nil
}

// toParamError reports the first failed validation rule
func toParamError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	first := verrs[0]
	field := strings.TrimPrefix(first.Namespace(), "InvoiceRequest.")
	return model.NewParamError(field, first.Value(), fmt.Sprintf("failed %q rule", first.Tag()))
}
