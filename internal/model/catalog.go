package model

// CFDI usage codes (uso CFDI)
const (
	UsageMerchandise     = "G01" // Adquisición de mercancías
	UsageReturns         = "G02" // Devoluciones, descuentos o bonificaciones
	UsageGeneralExpenses = "G03" // Gastos en general
	UsageConstruction    = "I01" // Construcciones
	UsageOfficeFurniture = "I02" // Mobiliario y equipo de oficina
	UsageToBeDefined     = "P01" // Por definir
	UsageNoTaxEffects    = "S01" // Sin efectos fiscales
)

// UsageCodes lists the accepted usage codes
var UsageCodes = map[string]string{
	UsageMerchandise:     "Adquisición de mercancías",
	UsageReturns:         "Devoluciones, descuentos o bonificaciones",
	UsageGeneralExpenses: "Gastos en general",
	UsageConstruction:    "Construcciones",
	UsageOfficeFurniture: "Mobiliario y equipo de oficina",
	UsageToBeDefined:     "Por definir",
	UsageNoTaxEffects:    "Sin efectos fiscales",
}

// Payment forms (forma de pago)
const (
	PaymentFormCash        = "01" // Efectivo
	PaymentFormCheck       = "02" // Cheque nominativo
	PaymentFormTransfer    = "03" // Transferencia electrónica de fondos
	PaymentFormCreditCard  = "04" // Tarjeta de crédito
	PaymentFormDebitCard   = "28" // Tarjeta de débito
	PaymentFormToBeDefined = "99" // Por definir
)

// PaymentForms lists the accepted payment form codes
var PaymentForms = map[string]string{
	PaymentFormCash:        "Efectivo",
	PaymentFormCheck:       "Cheque nominativo",
	PaymentFormTransfer:    "Transferencia electrónica de fondos",
	PaymentFormCreditCard:  "Tarjeta de crédito",
	PaymentFormDebitCard:   "Tarjeta de débito",
	PaymentFormToBeDefined: "Por definir",
}
