package parser

import (
	"fmt"
	"strings"
	"time"
)

// RecordParser turns raw rows into records with resolved instants.
type RecordParser struct {
	timestamps *TimestampParser
}

// NewRecordParser creates a record parser backed by the given timestamp parser.
func NewRecordParser(ts *TimestampParser) *RecordParser {
	if ts == nil {
		ts = DefaultTimestampParser()
	}
	return &RecordParser{timestamps: ts}
}

// Parse resolves row against prevStart, the start of the previously parsed
// record. A bare start time is dated from prevStart; a bare end time is dated
// from the row's own start. An empty end marks the record as deferred.
func (p *RecordParser) Parse(row *RawRow, prevStart time.Time) (*Record, error) {
	start, err := p.timestamps.Parse(row.Start, prevStart)
	if err != nil {
		return nil, p.rowError(row, fmt.Errorf("start: %w", err))
	}

	rec := &Record{
		Project:   strings.TrimSpace(row.Project),
		Start:     start,
		Notes:     row.Notes,
		Submitted: row.Submitted,
		Source:    row.Source,
		LineNum:   row.LineNum,
	}

	if strings.TrimSpace(row.End) == "" {
		rec.Deferred = true
		return rec, nil
	}

	end, err := p.timestamps.Parse(row.End, start)
	if err != nil {
		return nil, p.rowError(row, fmt.Errorf("end: %w", err))
	}
	rec.End = end

	return rec, nil
}

func (p *RecordParser) rowError(row *RawRow, err error) *RowError {
	return &RowError{Source: row.Source, LineNum: row.LineNum, Err: err}
}
