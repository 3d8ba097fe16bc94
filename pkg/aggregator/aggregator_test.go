package aggregator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/timetracking/pkg/parser"
)

type logEntry struct {
	level   string
	msg     string
	keyvals []any
}

// recordingLogger captures diagnostics for assertions.
type recordingLogger struct {
	entries []logEntry
}

func (l *recordingLogger) Debug(msg string, kv ...any) { l.add("debug", msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...any)  { l.add("info", msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...any)  { l.add("warn", msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...any) { l.add("error", msg, kv) }

func (l *recordingLogger) add(level, msg string, kv []any) {
	l.entries = append(l.entries, logEntry{level: level, msg: msg, keyvals: kv})
}

func (l *recordingLogger) count(level string) int {
	n := 0
	for _, e := range l.entries {
		if e.level == level {
			n++
		}
	}
	return n
}

var may1 = Day{Year: 2021, Month: time.May, Day: 1}

func newTestAggregator(opts ...Option) *Aggregator {
	base := []Option{
		WithRecordParser(parser.NewRecordParser(parser.NewTimestampParser(nil, nil, time.UTC))),
		WithClock(func() time.Time { return time.Date(2021, 5, 1, 18, 0, 0, 0, time.UTC) }),
	}
	return NewAggregator(append(base, opts...)...)
}

func row(submitted, project, start, end string) parser.RawRow {
	return parser.RawRow{Submitted: submitted, Project: project, Start: start, End: end}
}

func TestAggregateRows_ExplicitEnds(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", "2021-05-01 10:30"),
		row("", "ProjB", "2021-05-01 10:30", "2021-05-01 12:00"),
	})

	require.Equal(t, []Day{may1}, totals.Days())
	assert.Equal(t, 90*time.Minute, totals.Total(may1, "ProjA"))
	assert.Equal(t, 90*time.Minute, totals.Total(may1, "ProjB"))
	assert.Equal(t, 180*time.Minute, totals.DayTotal(may1))
}

func TestAggregateRows_DeferredEnd(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", ""),
		row("", "ProjA", "2021-05-01 10:00", "2021-05-01 10:30"),
	})

	assert.Equal(t, 90*time.Minute, totals.Total(may1, "ProjA"))
}

func TestAggregateRows_DeferredClosedByNextStart(t *testing.T) {
	starts := []string{"09:05", "11:59", "23:00"}

	for _, next := range starts {
		t.Run(next, func(t *testing.T) {
			totals := newTestAggregator().AggregateRows([]parser.RawRow{
				row("", "ProjA", "2021-05-01 09:00", ""),
				row("", "ProjB", next, "23:59"),
			})

			nextStart, err := time.Parse("2006-01-02 15:04", "2021-05-01 "+next)
			require.NoError(t, err)
			want := nextStart.Sub(time.Date(2021, 5, 1, 9, 0, 0, 0, time.UTC))
			assert.Equal(t, want, totals.Total(may1, "ProjA"))
		})
	}
}

func TestAggregateRows_ChainOfDeferred(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", ""),
		row("", "ProjB", "09:45", ""),
		row("", "ProjA", "10:15", ""),
		row("", "Lunch", "12:00", "13:00"),
	})

	assert.Equal(t, 45*time.Minute+105*time.Minute, totals.Total(may1, "ProjA"))
	assert.Equal(t, 30*time.Minute, totals.Total(may1, "ProjB"))
	assert.Equal(t, 60*time.Minute, totals.Total(may1, "Lunch"))
}

func TestAggregate_TrailingDeferredUsesClock(t *testing.T) {
	log := &recordingLogger{}
	a := newTestAggregator(WithLogger(log))

	result, err := a.Aggregate(context.Background(), parser.NewSliceSource([]parser.RawRow{
		row("", "ProjA", "2021-05-01 16:00", ""),
	}))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, result.Totals.Total(may1, "ProjA"))
	assert.Equal(t, 1, result.Stats.EndsDefaulted)
	assert.Equal(t, 1, log.count("warn"))
}

func TestAggregate_TrailingDeferredAfterClock(t *testing.T) {
	log := &recordingLogger{}
	a := newTestAggregator(WithLogger(log))

	result, err := a.Aggregate(context.Background(), parser.NewSliceSource([]parser.RawRow{
		row("", "ProjA", "2021-05-01 19:00", ""),
	}))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Totals.Len())
	assert.Equal(t, 1, result.Stats.EndsDefaulted)
	assert.Equal(t, 1, result.Stats.NegativeDiscarded)
}

func TestAggregate_NegativeDurationDiscarded(t *testing.T) {
	log := &recordingLogger{}
	a := newTestAggregator(WithLogger(log))

	result, err := a.Aggregate(context.Background(), parser.NewSliceSource([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", "2021-05-01 10:00"),
		row("", "ProjA", "2021-05-01 12:00", "2021-05-01 11:30"),
	}))
	require.NoError(t, err)

	assert.Equal(t, time.Hour, result.Totals.Total(may1, "ProjA"))
	assert.Equal(t, 1, result.Stats.NegativeDiscarded)
	assert.Equal(t, 1, result.Stats.RecordsAccumulated)

	require.Equal(t, 1, log.count("warn"))
	for _, e := range log.entries {
		if e.level == "warn" {
			assert.Contains(t, e.keyvals, "ProjA")
			assert.Contains(t, e.keyvals, int64(-30))
		}
	}
}

func TestAggregateRows_NegativeOnlyLeavesNoDay(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-01 12:00", "2021-05-01 11:00"),
	})

	assert.Equal(t, 0, totals.Len())
	assert.Equal(t, 0, totals.MaxProjectLen())
}

func TestAggregateRows_SubmissionFilter(t *testing.T) {
	rows := []parser.RawRow{
		row("yes", "Done", "2021-05-01 09:00", "2021-05-01 10:00"),
		row("", "Open", "2021-05-01 10:00", "2021-05-01 11:00"),
	}

	filtered := newTestAggregator().AggregateRows(rows)
	assert.Equal(t, time.Duration(0), filtered.Total(may1, "Done"))
	assert.Equal(t, time.Hour, filtered.Total(may1, "Open"))

	all := newTestAggregator(WithIgnoreSubmitted(true)).AggregateRows(rows)
	assert.Equal(t, time.Hour, all.Total(may1, "Done"))
	assert.Equal(t, time.Hour, all.Total(may1, "Open"))
}

func TestAggregateRows_FilterAppliesToDeferredRecords(t *testing.T) {
	rows := []parser.RawRow{
		row("Y", "Done", "2021-05-01 09:00", ""),
		row("", "Open", "2021-05-01 10:00", ""),
	}

	totals := newTestAggregator().AggregateRows(rows)
	assert.Equal(t, time.Duration(0), totals.Total(may1, "Done"))
	assert.Equal(t, 8*time.Hour, totals.Total(may1, "Open"))
}

func TestAggregate_MalformedRowKeepsLookback(t *testing.T) {
	log := &recordingLogger{}
	a := newTestAggregator(WithLogger(log))

	result, err := a.Aggregate(context.Background(), parser.NewSliceSource([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", ""),
		row("", "Broken", "not a time", "2021-05-01 09:30"),
		row("", "ProjB", "10:00", "11:00"),
	}))
	require.NoError(t, err)

	totals := result.Totals
	assert.Equal(t, time.Hour, totals.Total(may1, "ProjA"))
	assert.Equal(t, time.Hour, totals.Total(may1, "ProjB"))
	assert.Equal(t, time.Duration(0), totals.Total(may1, "Broken"))
	assert.Equal(t, 3, result.Stats.RowsRead)
	assert.Equal(t, 1, result.Stats.RowsSkipped)
	assert.Equal(t, 1, log.count("error"))
}

func TestAggregate_BareTimeWithoutPreviousRecord(t *testing.T) {
	result, err := newTestAggregator().Aggregate(context.Background(), parser.NewSliceSource([]parser.RawRow{
		row("", "ProjA", "09:00", "10:00"),
		row("", "ProjB", "2021-05-01 10:00", "2021-05-01 11:00"),
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.RowsSkipped)
	assert.Equal(t, []Day{may1}, result.Totals.Days())
	assert.Equal(t, time.Hour, result.Totals.Total(may1, "ProjB"))
}

func TestAggregateRows_BareTimeDisambiguation(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", "2021-05-01 10:00"),
		row("", "ProjB", "14:30", "15:00"),
	})

	assert.Equal(t, 30*time.Minute, totals.Total(may1, "ProjB"))
}

func TestAggregateRows_MultipleDaysOrdered(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "ProjA", "2021-05-03 09:00", "10:00"),
		row("", "ProjA", "2021-04-30 09:00", "10:00"),
		row("", "ProjA", "2021-05-01 09:00", "10:00"),
	})

	days := totals.Days()
	require.Len(t, days, 3)
	assert.Equal(t, "2021-04-30", days[0].String())
	assert.Equal(t, "2021-05-01", days[1].String())
	assert.Equal(t, "2021-05-03", days[2].String())
}

func TestAggregateRows_DeferredAcrossMidnightCountsOnStartDay(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "Ops", "2021-05-01 23:00", ""),
		row("", "Ops", "2021-05-02 01:00", "2021-05-02 02:00"),
	})

	assert.Equal(t, 2*time.Hour, totals.Total(may1, "Ops"))
	assert.Equal(t, time.Hour, totals.Total(Day{2021, time.May, 2}, "Ops"))
}

func TestAggregateRows_Idempotent(t *testing.T) {
	rows := []parser.RawRow{
		row("", "ProjA", "2021-05-01 09:00", ""),
		row("no", "ProjB", "10:00", "11:00"),
		row("", "ProjC", "11:00", "12:15"),
		row("", "ProjA", "2021-05-02 08:00", "09:00"),
	}
	a := newTestAggregator()

	first := a.AggregateRows(rows)
	second := a.AggregateRows(rows)
	assert.Equal(t, first, second)
}

func TestAggregateRows_MaxProjectLen(t *testing.T) {
	totals := newTestAggregator().AggregateRows([]parser.RawRow{
		row("", "A", "2021-05-01 09:00", "10:00"),
		row("", "Customer Portal", "10:00", "11:00"),
		row("yes", "A Much Longer Submitted Name", "11:00", "12:00"),
	})

	assert.Equal(t, len("Customer Portal"), totals.MaxProjectLen())
}

// failingSource yields one row then a fatal read error.
type failingSource struct {
	calls int
}

func (s *failingSource) Next(ctx context.Context) (*parser.RawRow, error) {
	s.calls++
	if s.calls == 1 {
		r := row("", "ProjA", "2021-05-01 09:00", "10:00")
		return &r, nil
	}
	return nil, errors.New("disk on fire")
}

func (s *failingSource) Close() error { return nil }

func TestAggregate_SourceErrorIsFatal(t *testing.T) {
	_, err := newTestAggregator().Aggregate(context.Background(), &failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestAggregate_RowErrorIsRecovered(t *testing.T) {
	content := `submitted,project,start,end,notes
,ProjA,2021-05-01 09:00,2021-05-01 10:00,
,ProjB,2021-05-01 10:00
,ProjC,2021-05-01 10:00,2021-05-01 10:45,
`
	log := &recordingLogger{}
	result, err := newTestAggregator(WithLogger(log)).Aggregate(
		context.Background(),
		parser.NewReaderSource(strings.NewReader(content), "inline"),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, result.Totals.Total(may1, "ProjA"))
	assert.Equal(t, 45*time.Minute, result.Totals.Total(may1, "ProjC"))
	assert.Equal(t, 3, result.Stats.RowsRead)
	assert.Equal(t, 1, result.Stats.RowsSkipped)
	assert.Equal(t, 1, log.count("error"))
}

func TestAggregate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAggregator().Aggregate(ctx, parser.NewSliceSource(nil))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_EmptySource(t *testing.T) {
	result, err := newTestAggregator().Aggregate(context.Background(), parser.NewSliceSource(nil))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Totals.Len())
	assert.Equal(t, Stats{}, result.Stats)
}

var _ parser.RowSource = (*failingSource)(nil)
