// Package aggregator sums timesheet records into per-day, per-project totals.
package aggregator

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf8"
)

// Day is a calendar date.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// ProjectTotal is the time spent on one project during one day.
type ProjectTotal struct {
	Project  string
	Duration time.Duration
}

// Accumulator maps days to per-project durations. It only grows and every
// stored duration is non-negative.
type Accumulator struct {
	days          map[Day]map[string]time.Duration
	maxProjectLen int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{days: make(map[Day]map[string]time.Duration)}
}

// Add adds d to the project's total for day. Negative durations are rejected
// and leave the accumulator unchanged.
func (a *Accumulator) Add(day Day, project string, d time.Duration) bool {
	if d < 0 {
		return false
	}

	projects, ok := a.days[day]
	if !ok {
		projects = make(map[string]time.Duration)
		a.days[day] = projects
	}
	projects[project] += d

	if n := utf8.RuneCountInString(project); n > a.maxProjectLen {
		a.maxProjectLen = n
	}
	return true
}

// Days returns all days in chronological order.
func (a *Accumulator) Days() []Day {
	days := make([]Day, 0, len(a.days))
	for day := range a.days {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Projects returns the totals for day ordered by project name.
func (a *Accumulator) Projects(day Day) []ProjectTotal {
	projects := a.days[day]
	totals := make([]ProjectTotal, 0, len(projects))
	for name, d := range projects {
		totals = append(totals, ProjectTotal{Project: name, Duration: d})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Project < totals[j].Project })
	return totals
}

// Total returns the accumulated time for a project on a day.
func (a *Accumulator) Total(day Day, project string) time.Duration {
	return a.days[day][project]
}

// DayTotal returns the time accumulated across all projects on a day.
func (a *Accumulator) DayTotal(day Day) time.Duration {
	var sum time.Duration
	for _, d := range a.days[day] {
		sum += d
	}
	return sum
}

// MaxProjectLen is the length of the longest project name accumulated.
func (a *Accumulator) MaxProjectLen() int {
	return a.maxProjectLen
}

// Len returns the number of days.
func (a *Accumulator) Len() int {
	return len(a.days)
}

// Stats counts what happened to the rows of one pass.
type Stats struct {
	// RowsRead is the number of rows delivered by the source, including malformed ones.
	RowsRead int

	// RowsSkipped is the number of rows dropped for read or parse errors.
	RowsSkipped int

	// RecordsAccumulated is the number of records added to the totals.
	RecordsAccumulated int

	// RecordsFiltered is the number of records excluded by submission status.
	RecordsFiltered int

	// NegativeDiscarded is the number of records dropped for ending before they started.
	NegativeDiscarded int

	// EndsDefaulted is 1 when the final record had no end and was closed at the current time.
	EndsDefaulted int
}

// Metadata provides context about an aggregation pass.
type Metadata struct {
	Source          string
	IgnoreSubmitted bool
	StartTime       time.Time
	EndTime         time.Time
}

// Result is the output of one aggregation pass.
type Result struct {
	Totals   *Accumulator
	Stats    Stats
	Metadata Metadata
}
