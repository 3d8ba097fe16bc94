package output

import (
	"context"
	"encoding/json"
	"io"
)

// JSONFormatter renders reports as indented JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the full report, or in quiet mode the day totals only.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		return encoder.Encode(newDayTotals(report))
	}

	return encoder.Encode(report)
}

// dayTotal is one day of quiet output.
type dayTotal struct {
	Date     string `json:"date"`
	Minutes  int64  `json:"minutes"`
	Duration string `json:"duration"`
}

// dayTotals is the quiet document: SUM lines and the summary, no project lines.
type dayTotals struct {
	Days    []dayTotal `json:"day_totals"`
	Summary Summary    `json:"summary"`
}

func newDayTotals(report *Report) dayTotals {
	out := dayTotals{
		Days:    make([]dayTotal, 0, len(report.Days)),
		Summary: report.Summary,
	}
	for _, day := range report.Days {
		out.Days = append(out.Days, dayTotal{
			Date:     day.Date,
			Minutes:  day.Minutes,
			Duration: HHMM(day.Minutes),
		})
	}
	return out
}
