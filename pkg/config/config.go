package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// layoutProbe is formatted with each layout and parsed back to check that
// the layout keeps the fields it is meant to carry.
var layoutProbe = time.Date(2021, time.May, 17, 14, 37, 0, 0, time.UTC)

// Load reads and validates a configuration file. An empty path yields the
// defaults with environment overrides applied.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and loads the timezone.
// Empty sections are filled with defaults.
func Validate(cfg *Config) error {
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	cfg.location = loc

	if err := validateTimestampFormats(&cfg.TimestampFormats); err != nil {
		return fmt.Errorf("timestamp_formats: %w", err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

func validateTimestampFormats(tf *TimestampConfig) error {
	if len(tf.DateTime) == 0 {
		tf.DateTime = []string{DefaultDateTimeLayout}
	}
	if len(tf.TimeOfDay) == 0 {
		tf.TimeOfDay = []string{DefaultTimeOfDayLayout}
	}

	for i, layout := range tf.DateTime {
		ts, err := roundTrip(layout)
		if err != nil {
			return fmt.Errorf("date_time[%d]: %w", i, err)
		}
		if ts.Year() != layoutProbe.Year() || ts.YearDay() != layoutProbe.YearDay() {
			return fmt.Errorf("date_time[%d]: layout %q does not carry a full date", i, layout)
		}
		if ts.Hour() != layoutProbe.Hour() || ts.Minute() != layoutProbe.Minute() {
			return fmt.Errorf("date_time[%d]: layout %q does not carry hours and minutes", i, layout)
		}
	}

	for i, layout := range tf.TimeOfDay {
		ts, err := roundTrip(layout)
		if err != nil {
			return fmt.Errorf("time_of_day[%d]: %w", i, err)
		}
		if ts.Hour() != layoutProbe.Hour() || ts.Minute() != layoutProbe.Minute() {
			return fmt.Errorf("time_of_day[%d]: layout %q does not carry hours and minutes", i, layout)
		}
	}

	return nil
}

func roundTrip(layout string) (time.Time, error) {
	if layout == "" {
		return time.Time{}, errors.New("layout is empty")
	}
	ts, err := time.Parse(layout, layoutProbe.Format(layout))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid layout %q: %w", layout, err)
	}
	return ts, nil
}

func validateOutput(out *OutputConfig) error {
	switch out.Format {
	case "":
		out.Format = OutputText
	case OutputText, OutputJSON, OutputCSV:
		// Valid
	default:
		return fmt.Errorf("invalid format %q (must be text, json, or csv)", out.Format)
	}

	if out.Quiet && out.Verbose {
		return errors.New("quiet and verbose are mutually exclusive")
	}

	return nil
}

func validateLogging(lc *LoggingConfig) error {
	switch lc.Level {
	case "":
		lc.Level = DefaultLogLevel
	case "error", "warn", "info", "debug":
		// Valid
	default:
		return fmt.Errorf("invalid level %q (must be error, warn, info, or debug)", lc.Level)
	}

	switch lc.Format {
	case "":
		lc.Format = DefaultLogFormat
	case "console", "json":
		// Valid
	default:
		return fmt.Errorf("invalid format %q (must be console or json)", lc.Format)
	}

	return nil
}
