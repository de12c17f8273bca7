package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/dispatch"
	"github.com/rezonia/sat-mexico/internal/model"
)

var (
	continueOnFail bool
	batchTimeout   time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Run one operation over a batch of rows",
	Long: `Run a batch document and print one result per row, in input order.

The document selects a resource and operation and lists the rows:

  {"resource": "rfc", "operation": "validar", "continueOnFail": true,
   "rows": [{"rfc": "GOMJ800101ABC"}, {"rfc": "ABC123"}]}

Resources and operations:
` + selectorHelp() + `
Without continue-on-fail the first failing row aborts the batch; the rows
already produced are still printed. With it, a failing row is replaced by
{"error": "..."} and processing continues.

Examples:
  sat-mexico batch rows.json
  cat rows.json | sat-mexico batch --continue-on-fail`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

// selectorHelp lists each resource with its operations
func selectorHelp() string {
	var b strings.Builder
	for _, resource := range dispatch.Resources() {
		fmt.Fprintf(&b, "  %-12s %s\n", resource, strings.Join(dispatch.Operations(resource), ", "))
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().BoolVar(&continueOnFail, "continue-on-fail", false, "Replace failing rows with error records instead of aborting")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "Timeout for the whole batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read batch: %w", err)
	}

	var batch dispatch.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("invalid batch document: %w", err)
	}
	if continueOnFail {
		batch.ContinueOnFail = true
	}

	printVerbose("Running %s/%s over %d rows\n", batch.Resource, batch.Operation, len(batch.Rows))

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	results, runErr := newDispatcher().Run(ctx, batch)

	var rowErr *model.RowError
	if runErr != nil && !errors.As(runErr, &rowErr) {
		return runErr
	}

	if err := writeOutput(cmd.OutOrStdout(), results,
		[]string{"ROW", "RESULT"},
		func(tw io.Writer) {
			for i, r := range results {
				if r.Failed() {
					fmt.Fprintf(tw, "%d\tERROR: %s\n", i+1, r.Err)
					continue
				}
				out, _ := json.Marshal(r)
				fmt.Fprintf(tw, "%d\t%s\n", i+1, out)
			}
		}); err != nil {
		return err
	}

	return runErr
}
