package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/timetracking/pkg/aggregator"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "validate <infile>",
		Short: "Validate a timesheet without printing a report",
		Long: `Validate a timesheet by reading every row the way the report does.

Reports:
  - Rows that are not valid CSV or have the wrong number of fields
  - Start and end values that match no timestamp layout
  - Records that end before they start
  - A trailing record with no end time

Exit codes:
  0 - No problems found
  1 - Problems found
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	addCommonFlags(cmd, opts)
	cmd.Flags().BoolVarP(&opts.IgnoreSubmitted, "ignore-submitted", "i", false, "Check records regardless of their submitted column")

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	ExitCode = 0
	infile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Validating %s...\n", infile)

	collector := &findingCollector{next: newLogger(cmd.ErrOrStderr(), cfg, opts)}
	result, err := aggregateFile(ctx, cfg, infile, collector)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	printFindings(w, collector.findings)
	printValidationSummary(w, result, len(collector.findings))

	if len(collector.findings) > 0 {
		ExitCode = 1
	}
	return nil
}

type severity int

const (
	severityWarning severity = iota
	severityError
)

// finding is one problem reported while reading a timesheet.
type finding struct {
	severity severity
	line     int
	message  string
	detail   string
}

// findingCollector records warnings and errors raised by the aggregator and
// passes everything else on to the next logger.
type findingCollector struct {
	next     aggregator.Logger
	findings []finding
}

func (c *findingCollector) Debug(msg string, keyvals ...any) { c.next.Debug(msg, keyvals...) }

func (c *findingCollector) Info(msg string, keyvals ...any) { c.next.Info(msg, keyvals...) }

func (c *findingCollector) Warn(msg string, keyvals ...any) {
	c.add(severityWarning, msg, keyvals)
}

func (c *findingCollector) Error(msg string, keyvals ...any) {
	c.add(severityError, msg, keyvals)
}

func (c *findingCollector) add(sev severity, msg string, keyvals []any) {
	f := finding{severity: sev, message: msg}

	var parts []string
	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch key {
		case "line":
			if n, ok := keyvals[i+1].(int); ok {
				f.line = n
			}
		case "source":
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", key, keyvals[i+1]))
		}
	}
	f.detail = strings.Join(parts, " ")

	c.findings = append(c.findings, f)
}

func printFindings(w io.Writer, findings []finding) {
	if len(findings) == 0 {
		return
	}

	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	sorted := make([]finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].line < sorted[j].line
	})

	fmt.Fprintf(w, "\nProblems:\n")
	for _, f := range sorted {
		if f.severity == severityError {
			red.Fprint(w, "  ERROR ")
		} else {
			yellow.Fprint(w, "  WARN  ")
		}
		fmt.Fprintf(w, "line %d: %s", f.line, f.message)
		if f.detail != "" {
			fmt.Fprintf(w, " (%s)", f.detail)
		}
		fmt.Fprintln(w)
	}
}

func printValidationSummary(w io.Writer, result *aggregator.Result, problems int) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	projects := make(map[string]struct{})
	days := result.Totals.Days()
	for _, day := range days {
		for _, pt := range result.Totals.Projects(day) {
			projects[pt.Project] = struct{}{}
		}
	}

	fmt.Fprintf(w, "\nRows read:   %d (%d skipped)\n", result.Stats.RowsRead, result.Stats.RowsSkipped)
	fmt.Fprintf(w, "Records:     %d counted, %d not pending, %d discarded\n",
		result.Stats.RecordsAccumulated, result.Stats.RecordsFiltered, result.Stats.NegativeDiscarded)
	fmt.Fprintf(w, "Days:        %d\n", len(days))
	fmt.Fprintf(w, "Projects:    %d\n", len(projects))
	fmt.Fprintln(w)

	if problems == 0 {
		green.Fprintln(w, "Timesheet valid!")
		return
	}
	red.Fprintf(w, "Timesheet has %d problem(s)\n", problems)
}
