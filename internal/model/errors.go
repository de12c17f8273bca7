package model

import (
	"errors"
	"fmt"
)

// Sentinel causes for configuration failures
var (
	ErrMissingCredentials = errors.New("billing credentials not configured")
	ErrMissingProvider    = errors.New("billing provider is none")
	ErrMissingAPIKey      = errors.New("facturapi api key is empty")
)

// ConfigurationError is returned when CFDI issuance is requested without
// usable provider credentials. No network call is made.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// UnsupportedProviderError is returned for a configured provider that has
// no issuing strategy.
type UnsupportedProviderError struct {
	Provider Provider
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("provider %s not implemented", e.Provider)
}

// NewUnsupportedProviderError creates a new unsupported provider error
func NewUnsupportedProviderError(provider Provider) *UnsupportedProviderError {
	return &UnsupportedProviderError{Provider: provider}
}

// SubmissionError represents a failed call to an invoicing provider.
// It is never retried and never replaced by an estimate.
type SubmissionError struct {
	Provider   Provider
	StatusCode int
	Body       string
	Cause      error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Cause != nil && e.StatusCode != 0:
		return fmt.Sprintf("[%s] submission failed with status %d (%v)", e.Provider, e.StatusCode, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] submission failed: %v", e.Provider, e.Cause)
	default:
		return fmt.Sprintf("[%s] submission failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// NewSubmissionError creates a new submission error
func NewSubmissionError(provider Provider, statusCode int, body string, cause error) *SubmissionError {
	return &SubmissionError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
		Cause:      cause,
	}
}

// ParamError represents a missing or invalid per-row parameter
type ParamError struct {
	Param   string
	Value   interface{}
	Message string
}

func (e *ParamError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid parameter %s: %s (value=%v)", e.Param, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
}

// NewParamError creates a new parameter error
func NewParamError(param string, value interface{}, message string) *ParamError {
	return &ParamError{
		Param:   param,
		Value:   value,
		Message: message,
	}
}

// RowError wraps the failure that aborted a batch at the given row
type RowError struct {
	Row   int
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Cause)
}

func (e *RowError) Unwrap() error {
	return e.Cause
}
