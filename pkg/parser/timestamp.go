package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default layouts for timesheet timestamps.
const (
	DateTimeLayout  = "2006-01-02 15:04"
	TimeOfDayLayout = "15:04"
)

// ErrNoReferenceDate is returned when a bare time of day has no date to attach to.
var ErrNoReferenceDate = errors.New("bare time of day without a preceding dated record")

// TimestampParser parses full date-times and bare times of day.
type TimestampParser struct {
	dateTimeLayouts  []string
	timeOfDayLayouts []string
	loc              *time.Location
}

// NewTimestampParser creates a parser for the given layouts, interpreting
// times in loc. Empty layout lists fall back to the defaults and a nil
// location means time.Local.
func NewTimestampParser(dateTimeLayouts, timeOfDayLayouts []string, loc *time.Location) *TimestampParser {
	if len(dateTimeLayouts) == 0 {
		dateTimeLayouts = []string{DateTimeLayout}
	}
	if len(timeOfDayLayouts) == 0 {
		timeOfDayLayouts = []string{TimeOfDayLayout}
	}
	if loc == nil {
		loc = time.Local
	}
	return &TimestampParser{
		dateTimeLayouts:  dateTimeLayouts,
		timeOfDayLayouts: timeOfDayLayouts,
		loc:              loc,
	}
}

// DefaultTimestampParser parses the default layouts in local time.
func DefaultTimestampParser() *TimestampParser {
	return NewTimestampParser(nil, nil, nil)
}

// Parse resolves value to an instant. A full date-time is used as is; a bare
// time of day takes its date from ref. A zero ref cannot date a bare time.
func (p *TimestampParser) Parse(value string, ref time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	for _, layout := range p.dateTimeLayouts {
		if ts, err := time.ParseInLocation(layout, value, p.loc); err == nil {
			return ts, nil
		}
	}

	for _, layout := range p.timeOfDayLayouts {
		tod, err := time.ParseInLocation(layout, value, p.loc)
		if err != nil {
			continue
		}
		if ref.IsZero() {
			return time.Time{}, fmt.Errorf("%q: %w", value, ErrNoReferenceDate)
		}
		ref = ref.In(p.loc)
		return time.Date(ref.Year(), ref.Month(), ref.Day(),
			tod.Hour(), tod.Minute(), tod.Second(), 0, p.loc), nil
	}

	return time.Time{}, fmt.Errorf("timestamp %q matches none of the layouts %v or %v",
		value, p.dateTimeLayouts, p.timeOfDayLayouts)
}
