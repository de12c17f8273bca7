package model

import (
	"github.com/shopspring/decimal"

	money "github.com/rezonia/sat-mexico/internal/decimal"
)

// DocumentType is the CFDI voucher type
type DocumentType string

const (
	DocumentIncome  DocumentType = "I"
	DocumentExpense DocumentType = "E"
)

// Invoice operations
const (
	OperationInvoice    = "factura"
	OperationCreditNote = "nota_credito"
)

// DocumentTypeFor maps an issuing operation to its document type
func DocumentTypeFor(operation string) (DocumentType, bool) {
	switch operation {
	case OperationInvoice:
		return DocumentIncome, true
	case OperationCreditNote:
		return DocumentExpense, true
	default:
		return "", false
	}
}

// Defaults applied while building a request
const (
	DefaultUsage       = UsageGeneralExpenses
	DefaultPaymentForm = PaymentFormCash
	DefaultProductCode = "01010101"
)

// Recipient is the invoice receiver
type Recipient struct {
	TaxID     string `json:"tax_id" validate:"required"`
	LegalName string `json:"legal_name"`
}

// LineItem is a single concept on the invoice
type LineItem struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ProductCode string          `json:"product_code" validate:"required,len=8,numeric"`
}

// InvoiceRequest is a provider-agnostic invoice, built once per row
type InvoiceRequest struct {
	Type        DocumentType `json:"type" validate:"required,oneof=I E"`
	Recipient   Recipient    `json:"recipient"`
	Use         string       `json:"use" validate:"required"`
	PaymentForm string       `json:"payment_form" validate:"required"`
	Items       []LineItem   `json:"items" validate:"required,min=1,dive"`
}

// Total sums quantity times unit price over all items
func (r *InvoiceRequest) Total() decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(r.Items))
	for _, item := range r.Items {
		amounts = append(amounts, item.Quantity.Mul(item.UnitPrice))
	}
	return money.RoundCurrency(money.Sum(amounts))
}
