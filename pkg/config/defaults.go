package config

import (
	"os"
	"strconv"
)

// Default values for configuration.
const (
	DefaultTimezone        = "Local"
	DefaultDateTimeLayout  = "2006-01-02 15:04"
	DefaultTimeOfDayLayout = "15:04"
	DefaultLogLevel        = "error"
	DefaultLogFormat       = "console"
)

// Environment variable names.
const (
	EnvTimezone        = "TIMETRACKING_TIMEZONE"
	EnvIgnoreSubmitted = "TIMETRACKING_IGNORE_SUBMITTED"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timezone: DefaultTimezone,
		TimestampFormats: TimestampConfig{
			DateTime:  []string{DefaultDateTimeLayout},
			TimeOfDay: []string{DefaultTimeOfDayLayout},
		},
		Output: OutputConfig{
			Format: OutputText,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if tz := os.Getenv(EnvTimezone); tz != "" {
		c.Timezone = tz
	}

	if v := os.Getenv(EnvIgnoreSubmitted); v != "" {
		if ignore, err := strconv.ParseBool(v); err == nil {
			c.IgnoreSubmitted = ignore
		}
	}
}
