package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/model"
)

var indicatorTimeout time.Duration

var indicatorCmd = &cobra.Command{
	Use:   "indicator",
	Short: "Look up UDI and exchange rates, convert UDI and pesos",
	Long: `Look up the current UDI value and MXN exchange rates.

When a source cannot be read the value is an estimate (UDI 8.25, USD 17.5,
EUR 19.0) tagged "estimated"; the command itself does not fail.

Examples:
  sat-mexico indicator udi
  sat-mexico indicator rate eur -f table
  sat-mexico indicator pesos-to-udi 8250`,
}

func init() {
	rootCmd.AddCommand(indicatorCmd)
	indicatorCmd.PersistentFlags().DurationVar(&indicatorTimeout, "timeout", 30*time.Second, "Lookup timeout")

	indicatorCmd.AddCommand(
		&cobra.Command{
			Use:   "udi",
			Short: "Current UDI value",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), indicatorTimeout)
				defer cancel()
				return printReading(cmd.OutOrStdout(), newFetcher().UDI(ctx))
			},
		},
		exchangeRateCommand("usd", string(model.IndicatorUSD)),
		exchangeRateCommand("eur", string(model.IndicatorEUR)),
		&cobra.Command{
			Use:   "rate [currency]",
			Short: "Pesos per unit of currency (USD or EUR)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), indicatorTimeout)
				defer cancel()
				return printReading(cmd.OutOrStdout(), newFetcher().ExchangeRate(ctx, args[0]))
			},
		},
		conversionCommand("udi-to-pesos", "Convert UDI to pesos at the current UDI value", model.DirectionUDIToPesos),
		conversionCommand("pesos-to-udi", "Convert pesos to UDI at the current UDI value", model.DirectionPesosToUDI),
	)
}

func exchangeRateCommand(use, currency string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Pesos per %s", currency),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), indicatorTimeout)
			defer cancel()
			return printReading(cmd.OutOrStdout(), newFetcher().ExchangeRate(ctx, currency))
		},
	}
}

func conversionCommand(use, short string, direction model.Direction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [amount]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if amount.IsNegative() {
				return fmt.Errorf("amount must not be negative")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), indicatorTimeout)
			defer cancel()

			fetcher := newFetcher()
			var result model.ConversionResult
			if direction == model.DirectionUDIToPesos {
				result, err = fetcher.ConvertUDIToPesos(ctx, amount)
			} else {
				result, err = fetcher.ConvertPesosToUDI(ctx, amount)
			}
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), result,
				[]string{"DIRECTION", "INPUT", "RATE", "OUTPUT", "AS OF", "SOURCE"},
				func(tw io.Writer) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
						result.Direction, result.Input, result.Rate, result.Output, result.AsOf, result.RateSource)
				})
		},
	}
}

func printReading(w io.Writer, r model.Reading) error {
	if r.IsEstimated() {
		printVerbose("Warning: %s is an estimate\n", r.Kind)
	}

	return writeOutput(w, r,
		[]string{"INDICATOR", "VALUE", "AS OF", "SOURCE", "NOTE"},
		func(tw io.Writer) {
			if r.Unsupported() {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\n", r.Kind, r.Error)
				return
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.Value, r.AsOf, r.Source, r.Note)
		})
}
