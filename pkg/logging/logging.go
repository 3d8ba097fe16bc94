// Package logging provides the leveled diagnostic stream used by the CLI.
package logging

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// TimeFormat is the timestamp layout of console log lines.
const TimeFormat = "2006-01-02T15:04:05"

// Logger writes leveled, structured diagnostics through zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New creates a logger writing to w at the given level. format is
// FormatConsole (human readable) or FormatJSON (one object per line).
func New(w io.Writer, level zerolog.Level, format string) *Logger {
	if w == nil {
		w = os.Stderr
	}

	out := w
	if format != FormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: TimeFormat,
			NoColor:    color.NoColor || w != os.Stderr,
		}
	}

	return &Logger{
		zl: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// LevelFromVerbosity maps the number of -v flags to a level:
// none is error, then warn, info and debug.
func LevelFromVerbosity(count int) zerolog.Level {
	switch {
	case count <= 0:
		return zerolog.ErrorLevel
	case count == 1:
		return zerolog.WarnLevel
	case count == 2:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}

// ParseLevel parses a level name, falling back to error for unknown names.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		return zerolog.ErrorLevel
	}
	return level
}

// Level returns the minimum level that is written.
func (l *Logger) Level() zerolog.Level {
	return l.zl.GetLevel()
}

func (l *Logger) Debug(msg string, keyvals ...any) { write(l.zl.Debug(), msg, keyvals) }
func (l *Logger) Info(msg string, keyvals ...any)  { write(l.zl.Info(), msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...any)  { write(l.zl.Warn(), msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...any) { write(l.zl.Error(), msg, keyvals) }

func write(e *zerolog.Event, msg string, keyvals []any) {
	if e == nil {
		return
	}
	if len(keyvals) > 0 {
		e = e.Fields(keyvals)
	}
	e.Msg(msg)
}
