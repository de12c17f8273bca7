package model

import "strings"

// Provider identifies a billing provider
type Provider string

const (
	ProviderNone      Provider = "none"
	ProviderFacturapi Provider = "facturapi"
	ProviderFinkok    Provider = "finkok"
)

// ParseProvider normalizes a provider name; empty means none
func ParseProvider(s string) Provider {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ProviderNone
	}
	return Provider(s)
}

// Facturapi environments
const (
	EnvironmentSandbox    = "sandbox"
	EnvironmentProduction = "production"
)

// Credentials are read-only billing provider settings owned by the caller
type Credentials struct {
	Provider             Provider `json:"provider"`
	FacturapiAPIKey      string   `json:"facturapiApiKey,omitempty"`
	FacturapiEnvironment string   `json:"facturapiEnvironment,omitempty"`
	FinkokUser           string   `json:"finkokUser,omitempty"`
	FinkokPassword       string   `json:"finkokPassword,omitempty"`
	IssuerRFC            string   `json:"issuerRfc,omitempty"`
}

// Configured reports whether a provider other than none is selected
func (c *Credentials) Configured() bool {
	return c != nil && ParseProvider(string(c.Provider)) != ProviderNone
}
