package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

const sumLabel = "SUM"

// TextFormatter formats reports as aligned plain text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	for _, day := range report.Days {
		if _, err := fmt.Fprintf(w, "%s | %s\n", day.Date, HHMM(day.Minutes)); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	width := report.ProjectWidth

	var b strings.Builder
	b.WriteString("=== REPORT ===\n")

	for _, day := range report.Days {
		b.WriteString(day.Date + "\n")
		for _, p := range day.Projects {
			fmt.Fprintf(&b, "  %-*s | %s\n", width, p.Project, HHMM(p.Minutes))
		}
		fmt.Fprintf(&b, "  %s | %s\n", sumLine(width), HHMM(day.Minutes))
		b.WriteString(strings.Repeat("-", width+10) + "\n")
	}

	if f.opts.Verbose {
		s := report.Summary
		fmt.Fprintf(&b, "Rows read: %d, skipped: %d\n", s.RowsRead, s.RowsSkipped)
		fmt.Fprintf(&b, "Records counted: %d, submitted: %d, negative: %d, open at end: %d\n",
			s.RecordsAccumulated, s.RecordsFiltered, s.NegativeDiscarded, s.EndsDefaulted)
		fmt.Fprintf(&b, "Total: %s over %d day(s)\n", HHMM(s.TotalMinutes), s.Days)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// sumLine right-aligns the SUM label in the project column, filled with dashes.
func sumLine(width int) string {
	if width <= len(sumLabel) {
		return sumLabel
	}
	return strings.Repeat("-", width-len(sumLabel)) + sumLabel
}
