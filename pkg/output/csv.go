package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVFormatter formats reports as comma-separated rows, one per project and day.
type CSVFormatter struct {
	opts FormatOptions
}

// NewCSVFormatter creates a new CSV formatter with the given options.
func NewCSVFormatter(opts FormatOptions) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

// Format renders the report as CSV. In quiet mode only day totals are written.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	writer := csv.NewWriter(w)

	headers := []string{"date", "project", "minutes", "duration"}
	if f.opts.Quiet {
		headers = []string{"date", "minutes", "duration"}
	}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, day := range report.Days {
		if f.opts.Quiet {
			row := []string{day.Date, strconv.FormatInt(day.Minutes, 10), HHMM(day.Minutes)}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
			continue
		}

		for _, p := range day.Projects {
			row := []string{day.Date, p.Project, strconv.FormatInt(p.Minutes, 10), HHMM(p.Minutes)}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
