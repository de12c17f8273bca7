package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server exposing every operation.

The API provides endpoints for:
  - POST /api/v1/rfc/{validate,format,clean}        - RFC helpers
  - GET  /api/v1/indicators/{udi,usd,eur}           - Indicator readings
  - GET  /api/v1/indicators/rate/:currency          - Exchange rate by code
  - POST /api/v1/indicators/{udi-to-pesos,pesos-to-udi}
  - POST /api/v1/cfdi/{invoice,credit-note}         - Issue CFDI
  - GET  /api/v1/cfdi/invoices/:id/pdf              - Invoice PDF
  - POST /api/v1/execute                            - Batch document
  - GET  /health, /health/upstream                  - Health checks

Flags override server.* configuration values.

Examples:
  # Start server on the configured address
  sat-mexico serve

  # Start on a custom port in debug mode
  sat-mexico serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (default from config, 30s)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (default from config, 2m)")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Address:         cfg.Server.Address,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		Debug:           cfg.Server.Debug || serverDebug,
		Credentials:     &cfg.Credentials,
		ExchangeRateURL: cfg.Endpoints.ExchangeRateURL,
		UDIURL:          cfg.Endpoints.UDIURL,
		FacturapiURL:    cfg.Endpoints.FacturapiURL,
		Logger:          log,
	}
	if serverAddr != "" {
		config.Address = serverAddr
	}
	if readTimeout > 0 {
		config.ReadTimeout = readTimeout
	}
	if writeTimeout > 0 {
		config.WriteTimeout = writeTimeout
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		_ = log.Sync()
		os.Exit(0)
	}()

	fmt.Fprintf(os.Stderr, "Starting server on %s\n", config.Address)
	if cfg.Credentials.Configured() {
		fmt.Fprintf(os.Stderr, "CFDI issuance via %s (%s)\n", cfg.Credentials.Provider, cfg.Credentials.FacturapiEnvironment)
	} else {
		fmt.Fprintln(os.Stderr, "CFDI issuance disabled (no provider configured)")
	}

	return srv.Run()
}
