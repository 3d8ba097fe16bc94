// Package output provides formatting and output generation for timesheet totals.
package output

import (
	"fmt"
	"time"

	"github.com/ccollicutt/timetracking/pkg/aggregator"
)

// Report is the complete aggregated timesheet.
type Report struct {
	// Days lists every day with recorded time, oldest first.
	Days []DayReport `json:"days"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`

	// ProjectWidth is the length of the longest project name, for column alignment.
	ProjectWidth int `json:"-"`
}

// DayReport holds the totals of one day.
type DayReport struct {
	Date     string        `json:"date"`
	Projects []ProjectLine `json:"projects"`

	// Minutes is the sum of the whole minutes of each project line.
	Minutes int64 `json:"minutes"`
}

// ProjectLine is the time spent on one project during one day.
type ProjectLine struct {
	Project string `json:"project"`

	// Minutes is the total truncated to whole minutes.
	Minutes int64 `json:"minutes"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Days               int   `json:"day_count"`
	Projects           int   `json:"project_count"`
	TotalMinutes       int64 `json:"total_minutes"`
	RowsRead           int   `json:"rows_read"`
	RowsSkipped        int   `json:"rows_skipped"`
	RecordsAccumulated int   `json:"records_accumulated"`
	RecordsFiltered    int   `json:"records_filtered"`
	NegativeDiscarded  int   `json:"negative_discarded"`
	EndsDefaulted      int   `json:"ends_defaulted"`
}

// Metadata provides context about the run.
type Metadata struct {
	// Source is the timesheet path.
	Source string `json:"source"`

	// IgnoreSubmitted records whether the submitted column was ignored.
	IgnoreSubmitted bool `json:"ignore_submitted"`

	// GeneratedAt is when aggregation completed.
	GeneratedAt time.Time `json:"generated_at"`

	// Duration is how long aggregation took.
	Duration time.Duration `json:"duration_ns"`
}

// NewReport creates a Report from an aggregation result.
func NewReport(result *aggregator.Result) *Report {
	totals := result.Totals
	report := &Report{
		Days:         make([]DayReport, 0, totals.Len()),
		ProjectWidth: totals.MaxProjectLen(),
		Metadata: Metadata{
			Source:          result.Metadata.Source,
			IgnoreSubmitted: result.Metadata.IgnoreSubmitted,
			GeneratedAt:     result.Metadata.EndTime,
			Duration:        result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			RowsRead:           result.Stats.RowsRead,
			RowsSkipped:        result.Stats.RowsSkipped,
			RecordsAccumulated: result.Stats.RecordsAccumulated,
			RecordsFiltered:    result.Stats.RecordsFiltered,
			NegativeDiscarded:  result.Stats.NegativeDiscarded,
			EndsDefaulted:      result.Stats.EndsDefaulted,
		},
	}

	projects := make(map[string]bool)
	for _, day := range totals.Days() {
		dr := DayReport{Date: day.String()}
		for _, pt := range totals.Projects(day) {
			mins := int64(pt.Duration / time.Minute)
			dr.Projects = append(dr.Projects, ProjectLine{Project: pt.Project, Minutes: mins})
			dr.Minutes += mins
			projects[pt.Project] = true
		}
		report.Days = append(report.Days, dr)
		report.Summary.TotalMinutes += dr.Minutes
	}
	report.Summary.Days = len(report.Days)
	report.Summary.Projects = len(projects)

	return report
}

// HHMM formats whole minutes as hours and minutes, e.g. 90 -> "01:30".
func HHMM(minutes int64) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}
