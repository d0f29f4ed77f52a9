package services

import (
	"time"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/stats"
)

// BuildSnapshot computes every summary the dashboard shows. readings must be
// sorted by time.
func BuildSnapshot(readings []models.Reading, now time.Time, source models.Source, timezone string, report models.LoadReport) *models.Snapshot {
	snap := &models.Snapshot{
		BuiltAt:  now,
		Source:   source,
		Timezone: timezone,
		Readings: readings,
		Latest:   stats.Latest(readings),
		Days:     len(stats.DistinctDates(readings)),
		Report:   report,
	}

	snap.Overall = stats.SummarizeAll(readings)
	snap.Last24h = stats.SummarizeAll(stats.Filter(readings, models.TimeRange24Hours, now))
	snap.ByDate = stats.SummarizeBy(readings, stats.ByDate, false)
	snap.ByWeekday = stats.SummarizeBy(readings, stats.ByWeekday, true)
	snap.ByHour = stats.SummarizeBy(readings, stats.ByHour, false)
	return snap
}

// Window returns the readings of snap inside tr, measured from now.
func Window(snap *models.Snapshot, tr models.TimeRange, now time.Time) []models.Reading {
	if snap == nil {
		return nil
	}
	return stats.Filter(snap.Readings, tr, now)
}
