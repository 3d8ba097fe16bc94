package aggregator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/timetracking/pkg/parser"
)

// Aggregator runs the parse-then-accumulate pass over a timesheet.
type Aggregator struct {
	records *parser.RecordParser
	log     Logger
	now     func() time.Time

	// Options
	ignoreSubmitted bool
}

// Option configures aggregator behavior.
type Option func(*Aggregator)

// WithIgnoreSubmitted counts every record regardless of its submitted column.
func WithIgnoreSubmitted(ignore bool) Option {
	return func(a *Aggregator) {
		a.ignoreSubmitted = ignore
	}
}

// WithLogger sets the diagnostic sink. Nil keeps the discarding default.
func WithLogger(l Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock sets the clock used to close a trailing record that has no end.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithRecordParser sets the parser used to resolve rows.
func WithRecordParser(p *parser.RecordParser) Option {
	return func(a *Aggregator) {
		if p != nil {
			a.records = p
		}
	}
}

// NewAggregator creates an aggregator with default parsing in local time.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		records: parser.NewRecordParser(nil),
		log:     nopLogger{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// pass holds the state of one Aggregate call.
type pass struct {
	*Aggregator
	totals *Accumulator
	stats  Stats
}

// Aggregate reads every row of source in order and returns the totals.
// Malformed rows are logged and skipped; only errors reading the source
// itself are returned.
func (a *Aggregator) Aggregate(ctx context.Context, source parser.RowSource) (*Result, error) {
	started := time.Now()
	p := &pass{Aggregator: a, totals: NewAccumulator()}

	var buffered slot = emptySlot{}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := source.Next(ctx)
		if err == io.EOF {
			break
		}

		var rowErr *parser.RowError
		if errors.As(err, &rowErr) {
			p.stats.RowsRead++
			p.stats.RowsSkipped++
			a.log.Error("skipping malformed row",
				"source", rowErr.Source, "line", rowErr.LineNum, "error", rowErr.Err.Error())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading timesheet: %w", err)
		}
		p.stats.RowsRead++

		rec, err := a.records.Parse(row, buffered.reference())
		if err != nil {
			p.stats.RowsSkipped++
			a.log.Error("skipping row", "source", row.Source, "line", row.LineNum, "error", err.Error())
			continue
		}
		a.log.Debug("parsed record",
			"line", rec.LineNum, "project", rec.Project, "start", rec.Start, "deferred", rec.Deferred)

		closed, next := advance(buffered, rec)
		if closed != nil {
			p.accumulate(closed)
		}
		if !rec.Deferred {
			p.accumulate(rec)
		}
		buffered = next
	}

	if rec := finish(buffered, a.now()); rec != nil {
		p.stats.EndsDefaulted++
		a.log.Warn("last record has no end time, using the current time",
			"line", rec.LineNum, "project", rec.Project, "start", rec.Start, "end", rec.End)
		p.accumulate(rec)
	}

	return &Result{
		Totals: p.totals,
		Stats:  p.stats,
		Metadata: Metadata{
			IgnoreSubmitted: a.ignoreSubmitted,
			StartTime:       started,
			EndTime:         time.Now(),
		},
	}, nil
}

// AggregateRows aggregates rows held in memory.
func (a *Aggregator) AggregateRows(rows []parser.RawRow) *Accumulator {
	// A slice source never fails and the context is never cancelled.
	result, err := a.Aggregate(context.Background(), parser.NewSliceSource(rows))
	if err != nil {
		return NewAccumulator()
	}
	return result.Totals
}

// accumulate adds a closed record to the totals unless it is filtered out
// or ends before it starts.
func (p *pass) accumulate(rec *parser.Record) {
	if !p.ignoreSubmitted && !IsPending(rec.Submitted) {
		p.stats.RecordsFiltered++
		p.log.Debug("record already decided, not counted",
			"line", rec.LineNum, "project", rec.Project, "submitted", rec.Submitted)
		return
	}

	delta := rec.Duration()
	if !p.totals.Add(DayOf(rec.Start), rec.Project, delta) {
		p.stats.NegativeDiscarded++
		p.log.Warn("record ends before it starts, discarded",
			"line", rec.LineNum,
			"project", rec.Project,
			"start", rec.Start,
			"end", rec.End,
			"minutes", int64(delta/time.Minute))
		return
	}
	p.stats.RecordsAccumulated++
}
