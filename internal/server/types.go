package server

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/sat-mexico/internal/dispatch"
)

// RFCRequest is the body of the RFC endpoints
type RFCRequest struct {
	RFC string `json:"rfc"`
}

// AmountRequest is the body of the conversion endpoints
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// ExecuteResponse is the response of the batch endpoint. On an aborted
// run Results holds the rows produced before the failure.
type ExecuteResponse struct {
	Results []dispatch.Result `json:"results"`
	Error   string            `json:"error,omitempty"`
	Row     int               `json:"row,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the response of the health endpoints
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time,omitempty"`
	Error  string `json:"error,omitempty"`
}
