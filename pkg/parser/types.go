// Package parser provides timesheet reading and record parsing functionality.
package parser

import (
	"fmt"
	"time"
)

// RawRow is one timesheet row as it appears in the source file.
type RawRow struct {
	// Submitted is the submission status column, carried verbatim.
	Submitted string

	// Project is the project name.
	Project string

	// Start is the start timestamp, either a full date-time or a bare time of day.
	Start string

	// End is the end timestamp. Empty means the end is deferred to the next row.
	End string

	// Notes is free text.
	Notes string

	// Source is the file path this row came from.
	Source string

	// LineNum is the 1-based line number in the source file.
	LineNum int
}

// Record is a row with resolved start and end instants.
type Record struct {
	Project   string
	Start     time.Time
	End       time.Time
	Notes     string
	Submitted string

	// Deferred is true when the row had no end time. End is zero until the
	// record is closed by a later row or by the end-of-input fallback.
	Deferred bool

	Source  string
	LineNum int
}

// Duration returns End - Start. The result may be negative.
func (r *Record) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// RowError describes a row that could not be read or parsed.
// Row errors are recoverable: the row is skipped and processing continues.
type RowError struct {
	Source  string
	LineNum int
	Err     error
}

func (e *RowError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("line %d: %v", e.LineNum, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Source, e.LineNum, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
