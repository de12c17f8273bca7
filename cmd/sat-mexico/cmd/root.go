package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/config"
	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/indicator"
	"github.com/rezonia/sat-mexico/internal/logger"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	configFile   string
	logLevel     string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sat-mexico",
	Short: "Mexican tax helpers: RFC, UDI, exchange rates and CFDI",
	Long: `sat-mexico validates RFCs, looks up the UDI value and MXN exchange rates,
converts between UDI and pesos and issues CFDI through Facturapi.

Indicator lookups never fail: when an upstream cannot be read the result
is an estimate tagged "estimated".

Configuration is read from satmx.{toml,yaml,json} (or --config) and from
SATMX_* environment variables, for example SATMX_CREDENTIALS_PROVIDER and
SATMX_CREDENTIALS_FACTURAPI_API_KEY.

Examples:
  # Validate an RFC
  sat-mexico rfc validate GOMJ800101ABC

  # Current USD rate as a table
  sat-mexico indicator usd -f table

  # Convert 1000 UDI to pesos
  sat-mexico indicator udi-to-pesos 1000

  # Run a batch document
  sat-mexico batch rows.json --continue-on-fail`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: ./satmx.toml or $HOME/.config/satmx/satmx.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error) (env: SATMX_LOG_LEVEL)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log = logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})

	printVerbose("Provider: %s (environment: %s)\n", cfg.Credentials.Provider, cfg.Credentials.FacturapiEnvironment)
	return nil
}

func newFetcher() *indicator.Fetcher {
	return indicator.NewFetcher(
		indicator.WithExchangeRateURL(cfg.Endpoints.ExchangeRateURL),
		indicator.WithUDIURL(cfg.Endpoints.UDIURL),
		indicator.WithLogger(log),
	)
}

func newCFDIService() *cfdi.Service {
	return cfdi.NewService(
		cfdi.WithFacturapiURL(cfg.Endpoints.FacturapiURL),
		cfdi.WithLogger(log),
	)
}

func newDispatcher() *dispatch.Dispatcher {
	return dispatch.New(
		dispatch.WithFetcher(newFetcher()),
		dispatch.WithCFDIService(newCFDIService()),
		dispatch.WithCredentials(&cfg.Credentials),
		dispatch.WithLogger(log),
	)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
