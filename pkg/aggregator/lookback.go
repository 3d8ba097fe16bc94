package aggregator

import (
	"time"

	"github.com/ccollicutt/timetracking/pkg/parser"
)

// slot is the single-record buffer carried from one row to the next.
// It is one of emptySlot, openSlot or closedSlot.
type slot interface {
	// reference is the start of the buffered record, used to date bare times.
	reference() time.Time
}

// emptySlot holds nothing; no row has parsed yet.
type emptySlot struct{}

// openSlot holds a record still waiting for its end time.
type openSlot struct {
	rec *parser.Record
}

// closedSlot holds a record that was accumulated with an explicit end.
type closedSlot struct {
	rec *parser.Record
}

func (emptySlot) reference() time.Time { return time.Time{} }

func (s openSlot) reference() time.Time { return s.rec.Start }

func (s closedSlot) reference() time.Time { return s.rec.Start }

// advance moves past cur. If the slot was open its record is closed at cur's
// start and returned; otherwise closed is nil.
func advance(s slot, cur *parser.Record) (closed *parser.Record, next slot) {
	if open, ok := s.(openSlot); ok {
		open.rec.End = cur.Start
		closed = open.rec
	}

	if cur.Deferred {
		return closed, openSlot{rec: cur}
	}
	return closed, closedSlot{rec: cur}
}

// finish closes an open slot at now. It returns nil when nothing is open.
func finish(s slot, now time.Time) *parser.Record {
	open, ok := s.(openSlot)
	if !ok {
		return nil
	}
	open.rec.End = now
	return open.rec
}
