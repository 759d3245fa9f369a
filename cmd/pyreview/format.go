package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jward/pyreview"
	"github.com/jward/pyreview/internal/sarifout"
)

// writeReport renders the findings in the requested format, in the order
// given.
func writeReport(w io.Writer, list []pyreview.Finding, format string, suggestions bool) error {
	switch format {
	case "json":
		return writeJSON(w, list)
	case "sarif":
		return sarifout.Write(w, list)
	default:
		return writeText(w, list, suggestions)
	}
}

// writeText prints one finding per line, optionally followed by an indented
// suggestion line.
func writeText(w io.Writer, list []pyreview.Finding, suggestions bool) error {
	for _, f := range list {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
		if suggestions && f.Suggestion != "" {
			if _, err := fmt.Fprintf(w, "    Suggestion: %s\n", f.Suggestion); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeJSON prints the findings as an indented JSON array.
func writeJSON(w io.Writer, list []pyreview.Finding) error {
	if list == nil {
		list = []pyreview.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}
