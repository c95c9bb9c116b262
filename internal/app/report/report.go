// Package report renders calculation outcomes for people: display rows,
// exported documents and share links.
package report

import (
	"strconv"
	"time"

	"github.com/osa030/playtime/internal/app/calc"
	"github.com/osa030/playtime/internal/domain/duration"
	"github.com/osa030/playtime/internal/domain/playlist"
)

// Row is one labeled line of a report.
type Row struct {
	Label string
	Value string
}

// Report is an ordered, titled set of rows.
type Report struct {
	Title string
	Rows  []Row
}

// New builds the report of a calculation outcome.
func New(title string, o *calc.Outcome) *Report {
	f := o.Statistics.Formatted()
	return &Report{
		Title: title,
		Rows: []Row{
			{Label: "Playlist Name", Value: o.Metadata.Title},
			{Label: "Creator Name", Value: o.Metadata.Creator},
			{Label: "Number of Videos", Value: strconv.FormatInt(o.Metadata.ItemCount, 10)},
			{Label: "Average Video Duration", Value: duration.Format(o.AverageSeconds)},
			{Label: "Total Duration", Value: duration.Format(float64(o.Result.TotalSeconds))},
			{Label: "Estimated Watch Time", Value: EstimatedWatchTime(o)},
			{Label: "Daily Watch Time", Value: f.Daily},
			{Label: "Weekly Watch Time", Value: f.Weekly},
			{Label: "Monthly Watch Time", Value: f.Monthly},
		},
	}
}

// EstimatedWatchTime renders the speed-adjusted total with its speed.
func EstimatedWatchTime(o *calc.Outcome) string {
	return "(at " + strconv.FormatFloat(o.Statistics.Speed, 'f', -1, 64) + "x speed) " +
		duration.Format(o.Statistics.AdjustedTotal)
}

// DatesLine renders the creation and last-updated dates of a playlist.
// Both are shown only when both are known and differ; otherwise the single
// known date is shown as the last update.
func DatesLine(meta *playlist.Metadata) string {
	created, updated := meta.CreatedAt, meta.UpdatedAt
	if !created.IsZero() && !updated.IsZero() && !created.Equal(updated) {
		return "Playlist Creation: " + created.Format(time.RFC3339) +
			" | Last Updated: " + updated.Format(time.RFC3339)
	}
	if created.IsZero() {
		return "Last Updated: Unavailable"
	}
	return "Last Updated: " + created.Format(time.RFC3339)
}
