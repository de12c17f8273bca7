package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/sat-mexico/internal/cfdi"
	"github.com/rezonia/sat-mexico/internal/model"
)

var (
	paramsFile   string
	recipientRFC string
	legalName    string
	usage        string
	paymentForm  string
	pdfOutput    string
	issueTimeout time.Duration
)

var cfdiCmd = &cobra.Command{
	Use:   "cfdi",
	Short: "Issue CFDI through the configured billing provider",
	Long: `Issue income invoices and credit notes through the configured provider.

Only Facturapi issues invoices; finkok is reported as not implemented and
a missing or "none" provider is a configuration error. Neither case makes
a network call. Failed submissions are reported, never retried.

The invoice parameters are read as JSON from --params (or stdin with "-"):

  {"rfcReceptor": "GOMJ800101ABC", "razonSocial": "Juan Gómez",
   "usoCfdi": "G03", "formaPago": "01",
   "items": [{"descripcion": "Servicio", "cantidad": 1,
              "precioUnitario": 100, "claveSat": "01010101"}]}

Examples:
  sat-mexico cfdi invoice --params invoice.json
  sat-mexico cfdi credit-note --params - --rfc XAXX010101000 < note.json
  sat-mexico cfdi pdf inv_123 -o factura.pdf`,
}

func init() {
	rootCmd.AddCommand(cfdiCmd)
	cfdiCmd.PersistentFlags().DurationVar(&issueTimeout, "timeout", 2*time.Minute, "Provider call timeout")

	for _, c := range []*cobra.Command{
		issueCommand("invoice", "Issue an income invoice (factura)", model.OperationInvoice),
		issueCommand("credit-note", "Issue a credit note (nota de crédito)", model.OperationCreditNote),
	} {
		c.Flags().StringVarP(&paramsFile, "params", "p", "", "Invoice parameters JSON file, - for stdin")
		c.Flags().StringVar(&recipientRFC, "rfc", "", "Recipient RFC (overrides rfcReceptor)")
		c.Flags().StringVar(&legalName, "name", "", "Recipient legal name (overrides razonSocial)")
		c.Flags().StringVar(&usage, "usage", "", "CFDI usage code (default G03)")
		c.Flags().StringVar(&paymentForm, "payment-form", "", "Payment form code (default 01)")
		_ = c.MarkFlagRequired("params")
		cfdiCmd.AddCommand(c)
	}

	pdfCmd := &cobra.Command{
		Use:   "pdf [invoice-id]",
		Short: "Download the PDF of an issued invoice",
		Args:  cobra.ExactArgs(1),
		RunE:  runDownloadPDF,
	}
	pdfCmd.Flags().StringVarP(&pdfOutput, "output", "o", "", "Write the PDF to this file")
	cfdiCmd.AddCommand(pdfCmd)
}

func issueCommand(use, short, operation string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := readInvoiceParams(cmd.InOrStdin())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), issueTimeout)
			defer cancel()

			printVerbose("Issuing %s for %s\n", operation, params.RecipientRFC)
			resp, err := newCFDIService().Issue(ctx, &cfg.Credentials, operation, params)
			if err != nil {
				return err
			}

			return writeOutput(cmd.OutOrStdout(), resp,
				[]string{"ID", "UUID", "STATUS", "TOTAL"},
				func(tw io.Writer) {
					fmt.Fprintf(tw, "%v\t%v\t%v\t%v\n", resp["id"], resp["uuid"], resp["status"], resp["total"])
				})
		},
	}
}

func readInvoiceParams(stdin io.Reader) (cfdi.Params, error) {
	var params cfdi.Params

	var data []byte
	var err error
	if paramsFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(paramsFile)
	}
	if err != nil {
		return params, fmt.Errorf("failed to read parameters: %w", err)
	}

	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("invalid parameters JSON: %w", err)
	}

	if recipientRFC != "" {
		params.RecipientRFC = recipientRFC
	}
	if legalName != "" {
		params.LegalName = legalName
	}
	if usage != "" {
		params.Usage = usage
	}
	if paymentForm != "" {
		params.PaymentForm = paymentForm
	}
	return params, nil
}

func runDownloadPDF(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), issueTimeout)
	defer cancel()

	doc, err := newCFDIService().DownloadPDF(ctx, &cfg.Credentials, args[0])
	if err != nil {
		return err
	}

	if pdfOutput != "" {
		if err := os.WriteFile(pdfOutput, doc.Content, 0o644); err != nil {
			return fmt.Errorf("failed to write PDF: %w", err)
		}
		printVerbose("Wrote %d bytes to %s\n", doc.Bytes, pdfOutput)
	}

	return writeOutput(cmd.OutOrStdout(), doc,
		[]string{"INVOICE", "BYTES", "PAGES"},
		func(tw io.Writer) {
			fmt.Fprintf(tw, "%s\t%d\t%d\n", doc.InvoiceID, doc.Bytes, doc.Pages)
		})
}
