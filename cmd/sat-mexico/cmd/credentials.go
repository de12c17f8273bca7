package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/model"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Inspect and test the configured credentials",
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured credentials with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runCredentialsShow,
}

var credentialsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the exchange rate source is reachable",
	Long: `Query the exchange rate source once. Unlike the indicator commands this
fails when the source cannot be read.`,
	Args: cobra.NoArgs,
	RunE: runCredentialsTest,
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsShowCmd, credentialsTestCmd)
}

// CredentialsView is the masked form of model.Credentials
type CredentialsView struct {
	Provider    model.Provider `json:"provider"`
	Configured  bool           `json:"configured"`
	Environment string         `json:"facturapiEnvironment,omitempty"`
	APIKey      string         `json:"facturapiApiKey,omitempty"`
	FinkokUser  string         `json:"finkokUser,omitempty"`
	IssuerRFC   string         `json:"issuerRfc,omitempty"`
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func runCredentialsShow(cmd *cobra.Command, args []string) error {
	creds := cfg.Credentials
	view := CredentialsView{
		Provider:    creds.Provider,
		Configured:  creds.Configured(),
		Environment: creds.FacturapiEnvironment,
		APIKey:      mask(creds.FacturapiAPIKey),
		FinkokUser:  creds.FinkokUser,
		IssuerRFC:   creds.IssuerRFC,
	}

	return writeOutput(cmd.OutOrStdout(), view,
		[]string{"PROVIDER", "CONFIGURED", "ENVIRONMENT", "API KEY", "ISSUER RFC"},
		func(tw io.Writer) {
			fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\n", view.Provider, view.Configured, view.Environment, view.APIKey, view.IssuerRFC)
		})
}

func runCredentialsTest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := newFetcher().Ping(ctx); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "OK: exchange rate source reachable")
	return nil
}
