package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/rezonia/sat-mexico/internal/model"
)

// EnvPrefix is the prefix for environment overrides (SATMX_CREDENTIALS_PROVIDER, ...)
const EnvPrefix = "SATMX"

// Default upstream endpoints
const (
	DefaultExchangeRateURL = "https://api.exchangerate-api.com/v4/latest/USD"
	DefaultUDIURL          = "https://sidofqa.segob.gob.mx/dof/sidof/indicadores"
	DefaultFacturapiURL    = "https://www.facturapi.io/v2"
)

// Config holds all application configuration
type Config struct {
	Credentials model.Credentials
	Endpoints   EndpointsConfig
	Log         LogConfig
	Server      ServerConfig
}

// EndpointsConfig holds upstream base URLs
type EndpointsConfig struct {
	ExchangeRateURL string
	UDIURL          string
	FacturapiURL    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Load reads configuration with this priority (highest first):
//  1. Environment variables with SATMX_ prefix
//  2. The config file at path, or satmx.{toml,yaml,json} in . and $HOME/.config/satmx
//  3. Built-in defaults
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("satmx")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/satmx")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Credentials: model.Credentials{
			Provider:             model.ParseProvider(v.GetString("credentials.provider")),
			FacturapiAPIKey:      v.GetString("credentials.facturapi_api_key"),
			FacturapiEnvironment: v.GetString("credentials.facturapi_environment"),
			FinkokUser:           v.GetString("credentials.finkok_user"),
			FinkokPassword:       v.GetString("credentials.finkok_password"),
			IssuerRFC:            v.GetString("credentials.issuer_rfc"),
		},
		Endpoints: EndpointsConfig{
			ExchangeRateURL: v.GetString("endpoints.exchange_rate_url"),
			UDIURL:          v.GetString("endpoints.udi_url"),
			FacturapiURL:    v.GetString("endpoints.facturapi_url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Server: ServerConfig{
			Address:      v.GetString("server.address"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			Debug:        v.GetBool("server.debug"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with only built-in defaults
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Credentials.Provider == "" {
		cfg.Credentials.Provider = model.ProviderNone
	}
	if cfg.Credentials.FacturapiEnvironment == "" {
		cfg.Credentials.FacturapiEnvironment = model.EnvironmentSandbox
	}
	if cfg.Endpoints.ExchangeRateURL == "" {
		cfg.Endpoints.ExchangeRateURL = DefaultExchangeRateURL
	}
	if cfg.Endpoints.UDIURL == "" {
		cfg.Endpoints.UDIURL = DefaultUDIURL
	}
	if cfg.Endpoints.FacturapiURL == "" {
		cfg.Endpoints.FacturapiURL = DefaultFacturapiURL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 2 * time.Minute
	}
}

// Validate checks enumerated values. Missing credentials are not an error
// here; issuance reports them when it is actually requested.
func (c *Config) Validate() error {
	switch c.Credentials.Provider {
	case model.ProviderNone, model.ProviderFacturapi, model.ProviderFinkok:
	default:
		return fmt.Errorf("config: unknown credentials.provider %q", c.Credentials.Provider)
	}

	switch c.Credentials.FacturapiEnvironment {
	case model.EnvironmentSandbox, model.EnvironmentProduction:
	default:
		return fmt.Errorf("config: unknown credentials.facturapi_environment %q", c.Credentials.FacturapiEnvironment)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("config: unknown log.format %q", c.Log.Format)
	}

	return nil
}
