package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/rfc"
)

var rfcCmd = &cobra.Command{
	Use:   "rfc",
	Short: "Validate and normalize RFCs",
	Long: `Validate and normalize Registro Federal de Contribuyentes identifiers.

Invalid input is reported, never treated as an error.

Examples:
  sat-mexico rfc validate GOMJ800101ABC xaxx-010101-000
  sat-mexico rfc format "abc 800101-xy1"
  sat-mexico rfc clean "abc.800101/xy1"`,
}

var rfcValidateCmd = &cobra.Command{
	Use:   "validate [rfc...]",
	Short: "Classify RFCs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRFCValidate,
}

var rfcFormatCmd = &cobra.Command{
	Use:   "format [rfc...]",
	Short: "Uppercase and remove whitespace and hyphens",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRFCNormalize(cmd, args, rfc.Format)
	},
}

var rfcCleanCmd = &cobra.Command{
	Use:   "clean [rfc...]",
	Short: "Uppercase and keep only A-Z, Ñ, & and 0-9",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRFCNormalize(cmd, args, rfc.Clean)
	},
}

func init() {
	rootCmd.AddCommand(rfcCmd)
	rfcCmd.AddCommand(rfcValidateCmd, rfcFormatCmd, rfcCleanCmd)
}

func runRFCValidate(cmd *cobra.Command, args []string) error {
	results := make([]rfc.Result, 0, len(args))
	for _, arg := range args {
		results = append(results, rfc.Classify(arg))
	}

	return writeOutput(cmd.OutOrStdout(), results,
		[]string{"RFC", "VALID", "TYPE", "MESSAGE"},
		func(tw io.Writer) {
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", r.RFC, r.Valid, r.Type, r.Message)
			}
		})
}

func runRFCNormalize(cmd *cobra.Command, args []string, normalize func(string) string) error {
	results := make([]dispatch.NormalizedRFC, 0, len(args))
	for _, arg := range args {
		results = append(results, dispatch.NormalizedRFC{RFC: normalize(arg)})
	}

	return writeOutput(cmd.OutOrStdout(), results,
		[]string{"INPUT", "RFC"},
		func(tw io.Writer) {
			for i, r := range results {
				fmt.Fprintf(tw, "%s\t%s\n", args[i], r.RFC)
			}
		})
}
