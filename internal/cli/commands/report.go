package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/timetracking/pkg/aggregator"
	"github.com/ccollicutt/timetracking/pkg/config"
	"github.com/ccollicutt/timetracking/pkg/logging"
	"github.com/ccollicutt/timetracking/pkg/output"
	"github.com/ccollicutt/timetracking/pkg/parser"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

var errNoInfile = errors.New("infile parameter was not provided")

var _ aggregator.Logger = (*logging.Logger)(nil)

// ReportedError wraps an error that has already been written to the log.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// ReportOptions holds command-line options for the report command.
type ReportOptions struct {
	ConfigPath      string
	IgnoreSubmitted bool
	Verbosity       int
	Output          string
	Quiet           bool
	VerboseReport   bool
	LogFormat       string
}

// NewReportCommand creates the command that reads a timesheet and prints
// per-day, per-project totals. It serves as the root command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "timetracking [flags] <infile>",
		Short: "Summarize time spent per project per day",
		Long: `Read a timesheet CSV and print the time spent on each project for each day.

Columns: submitted, project, start, end, notes. A row with an empty end is
closed by the start of the next row; a trailing open row ends now. Rows whose
submitted column is y/yes/true/n/no/false are skipped unless -i is given.

Exit codes:
  0 - Report written
  2 - Missing infile, configuration or runtime error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addCommonFlags(cmd, opts)
	cmd.Flags().BoolVarP(&opts.IgnoreSubmitted, "ignore-submitted", "i", false, "Count records regardless of their submitted column")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json|csv)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Day totals only, no project lines")
	cmd.Flags().BoolVar(&opts.VerboseReport, "verbose-report", false, "Append processing statistics to the report")

	return cmd
}

// addCommonFlags registers the flags shared by every command that reads a timesheet.
func addCommonFlags(cmd *cobra.Command, opts *ReportOptions) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	cmd.Flags().StringVar(&opts.LogFormat, "log-format", "", "Log format (console|json)")
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	ExitCode = 0
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, cmd, opts)
	if err != nil {
		return err
	}

	log := newLogger(cmd.ErrOrStderr(), cfg, opts)
	log.Info("logging level set", "level", log.Level().String())

	if len(args) == 0 {
		log.Error(errNoInfile.Error())
		return &ReportedError{Err: errNoInfile}
	}
	infile := args[0]

	formatter, err := createFormatter(cfg.Output)
	if err != nil {
		return err
	}

	result, err := aggregateFile(ctx, cfg, infile, log)
	if err != nil {
		log.Error("processing of the input file failed", "file", infile, "error", err.Error())
		return &ReportedError{Err: err}
	}

	report := output.NewReport(result)
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}

// loadConfig reads the configuration file and applies flags that were set
// explicitly on the command line.
func loadConfig(ctx context.Context, cmd *cobra.Command, opts *ReportOptions) (*config.Config, error) {
	cfg, err := config.Load(ctx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("ignore-submitted") {
		cfg.IgnoreSubmitted = opts.IgnoreSubmitted
	}
	if flags.Changed("output") {
		cfg.Output.Format = config.OutputFormat(opts.Output)
	}
	if flags.Changed("quiet") {
		cfg.Output.Quiet = opts.Quiet
	}
	if flags.Changed("verbose-report") {
		cfg.Output.Verbose = opts.VerboseReport
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.LogFormat
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return cfg, nil
}

// newLogger builds the diagnostic logger. The -v count wins over the
// configured level when given.
func newLogger(w io.Writer, cfg *config.Config, opts *ReportOptions) *logging.Logger {
	level := logging.ParseLevel(cfg.Logging.Level)
	if opts.Verbosity > 0 {
		level = logging.LevelFromVerbosity(opts.Verbosity)
	}
	return logging.New(w, level, cfg.Logging.Format)
}

// aggregateFile runs one aggregation pass over the timesheet at path.
func aggregateFile(ctx context.Context, cfg *config.Config, path string, log aggregator.Logger) (*aggregator.Result, error) {
	source := parser.NewCSVSource(path)
	defer source.Close()

	agg := aggregator.NewAggregator(
		aggregator.WithIgnoreSubmitted(cfg.IgnoreSubmitted),
		aggregator.WithLogger(log),
		aggregator.WithRecordParser(newRecordParser(cfg)),
	)

	result, err := agg.Aggregate(ctx, source)
	if err != nil {
		return nil, err
	}
	result.Metadata.Source = path
	return result, nil
}

func newRecordParser(cfg *config.Config) *parser.RecordParser {
	ts := parser.NewTimestampParser(
		cfg.TimestampFormats.DateTime,
		cfg.TimestampFormats.TimeOfDay,
		cfg.Location(),
	)
	return parser.NewRecordParser(ts)
}

func createFormatter(out config.OutputConfig) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: out.Verbose,
		Quiet:   out.Quiet,
	}

	switch out.Format {
	case config.OutputText, "":
		return output.NewTextFormatter(formatOpts), nil
	case config.OutputJSON:
		return output.NewJSONFormatter(formatOpts), nil
	case config.OutputCSV:
		return output.NewCSVFormatter(formatOpts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text, json or csv)", out.Format)
	}
}
