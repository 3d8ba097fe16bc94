package parser

import (
	"context"
)

// RowSource provides an iterator over timesheet rows in file order.
// Implementations must be safe for sequential access (not concurrent).
type RowSource interface {
	// Next returns the next raw row.
	// Returns io.EOF when no more rows are available.
	// A malformed row is reported as a *RowError; the caller may keep
	// calling Next to continue past it. Any other error is fatal.
	Next(ctx context.Context) (*RawRow, error)

	// Close releases any resources held by the source.
	Close() error
}
