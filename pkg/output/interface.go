package output

import (
	"context"
	"io"
)

// Formatter renders an aggregated timesheet in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json, csv).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose appends processing statistics.
	Verbose bool

	// Quiet prints day totals only.
	Quiet bool
}
