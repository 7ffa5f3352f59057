package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output writes command results as text or JSON.
type Output struct {
	Format string
	Writer io.Writer
}

// Result prints v as JSON, or text as-is in text mode.
func (o *Output) Result(v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(o.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(o.Writer, text)
	return err
}

// Table prints rows with aligned columns in text mode, or v as JSON.
func (o *Output) Table(v any, header []string, rows [][]string) error {
	if o.Format == "json" {
		return o.Result(v, "")
	}
	tw := tabwriter.NewWriter(o.Writer, 0, 4, 2, ' ', 0)
	writeRow(tw, header)
	for _, r := range rows {
		writeRow(tw, r)
	}
	return tw.Flush()
}

func writeRow(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
