package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// writeOutput prints v as indented JSON, or as a table when the format
// is table and rows renders it
func writeOutput(w io.Writer, v interface{}, header []string, rows func(tw io.Writer)) error {
	switch outputFormat {
	case "json":
		return outputJSON(w, v)
	case "table":
		return outputTable(w, header, rows)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func outputTable(w io.Writer, header []string, rows func(tw io.Writer)) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		for range h {
			fmt.Fprint(tw, "-")
		}
	}
	fmt.Fprintln(tw)

	rows(tw)
	return tw.Flush()
}
