// Package config provides configuration loading and validation for timetracking.
package config

import "time"

// Config is the root configuration structure loaded from YAML.
// Every field is optional; command-line flags override file values.
type Config struct {
	// IgnoreSubmitted counts every record regardless of its submitted column.
	IgnoreSubmitted bool `yaml:"ignore_submitted"`

	// Timezone is the IANA name timestamps are interpreted in, or "Local".
	Timezone string `yaml:"timezone"`

	TimestampFormats TimestampConfig `yaml:"timestamp_formats"`
	Output           OutputConfig    `yaml:"output"`
	Logging          LoggingConfig   `yaml:"logging"`

	// location is the loaded Timezone (populated during validation).
	location *time.Location
}

// Location returns the loaded timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// TimestampConfig lists the Go time layouts accepted in start and end columns.
// See https://pkg.go.dev/time#pkg-constants for format.
type TimestampConfig struct {
	// DateTime layouts carry a full date and a time of day.
	DateTime []string `yaml:"date_time"`

	// TimeOfDay layouts carry only a time; the date comes from context.
	TimeOfDay []string `yaml:"time_of_day"`
}

// OutputFormat selects the report renderer.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputCSV  OutputFormat = "csv"
)

// OutputConfig controls the report.
type OutputConfig struct {
	Format  OutputFormat `yaml:"format"`
	Quiet   bool         `yaml:"quiet"`
	Verbose bool         `yaml:"verbose"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	// Level is the minimum level written when no -v flag is given.
	Level string `yaml:"level"`

	// Format is "console" or "json".
	Format string `yaml:"format"`
}
