// Package stats groups enriched readings and computes per-metric summaries.
package stats

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/j-veylop/speed-dashboard/internal/models"
)

// Weekdays is the canonical Monday-first order used when reindexing.
var Weekdays = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

// AllKey is the single group key produced by All.
const AllKey = "all"

// KeyFunc assigns a reading to exactly one group.
type KeyFunc func(models.Reading) string

// All puts every reading into one group.
func All(models.Reading) string { return AllKey }

// ByDate groups by localized calendar date.
func ByDate(r models.Reading) string { return r.Date.String() }

// ByWeekday groups by weekday name.
func ByWeekday(r models.Reading) string { return r.DayOfWeek }

// ByHour groups by hour of day. Keys are zero padded so they sort numerically.
func ByHour(r models.Reading) string { return fmt.Sprintf("%02d", r.HourOfDay) }

// Group is a set of readings sharing a key.
type Group struct {
	Key      string
	Readings []models.Reading
}

// GroupBy partitions readings by key. Groups are sorted by key and keep the
// input order of their readings.
func GroupBy(readings []models.Reading, key KeyFunc) []Group {
	buckets := make(map[string][]models.Reading)
	for _, r := range readings {
		k := key(r)
		buckets[k] = append(buckets[k], r)
	}

	keys := slices.Sorted(maps.Keys(buckets))
	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Readings: buckets[k]})
	}
	return groups
}

// Summarize computes count, median, mean and sample standard deviation of
// every metric for each group. With weekdayOrder the tables are reindexed to
// Monday through Sunday: days without readings become rows of missing
// statistics and keys that are not weekday names are dropped.
func Summarize(groups []Group, weekdayOrder bool) models.Summaries {
	out := make(models.Summaries, len(models.Metrics))
	for _, metric := range models.Metrics {
		table := make(models.Table, 0, len(groups))
		for _, g := range groups {
			table = append(table, models.Row{Key: g.Key, Summary: Describe(Values(g.Readings, metric))})
		}
		if weekdayOrder {
			table = reindex(table, Weekdays)
		}
		out[metric] = table
	}
	return out
}

// SummarizeBy groups readings with key and summarizes them. Groups only exist
// for keys that occur, so empty input yields empty tables.
func SummarizeBy(readings []models.Reading, key KeyFunc, weekdayOrder bool) models.Summaries {
	return Summarize(GroupBy(readings, key), weekdayOrder)
}

// SummarizeAll summarizes readings as the single AllKey group. The tables
// always have one row; for empty input it holds a zero count.
func SummarizeAll(readings []models.Reading) models.Summaries {
	return Summarize([]Group{{Key: AllKey, Readings: readings}}, false)
}

func reindex(table models.Table, order []string) models.Table {
	out := make(models.Table, len(order))
	for i, key := range order {
		row, ok := table.Lookup(key)
		if !ok {
			row = models.Row{Key: key}
		}
		out[i] = row
	}
	return out
}

// Values extracts one metric from each reading.
func Values(readings []models.Reading, metric models.Metric) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = metric.Value(r)
	}
	return values
}

// Describe summarizes a sample. An empty sample has a zero count and missing
// statistics; std needs at least two values.
func Describe(values []float64) models.Summary {
	s := models.Summary{Count: models.Some(len(values))}
	if len(values) == 0 {
		return s
	}

	s.Median = models.Some(Median(values))
	if len(values) < 2 {
		s.Mean = models.Some(values[0])
		return s
	}

	mean, std := stat.MeanStdDev(values, nil)
	s.Mean = models.Some(mean)
	s.Std = models.Some(std)
	return s
}

// Median returns the 50th percentile, interpolating between the two middle
// values of an even-sized sample.
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Percentile returns the p-th percentile (0-100) by linear interpolation.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	position := (p / 100.0) * float64(len(sorted)-1)
	lower := int(position)
	if lower < 0 {
		return sorted[0]
	}
	if lower+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := position - float64(lower)
	return sorted[lower]*(1-weight) + sorted[lower+1]*weight
}

// Bin is one histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits the range of values into equal-width bins. The last bin
// is closed so the maximum is counted.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		hi = lo + 1
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: edges[i], Upper: edges[i+1]}
	}
	width := (hi - lo) / float64(bins)
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}

// Filter keeps readings inside the time range ending at now.
func Filter(readings []models.Reading, tr models.TimeRange, now time.Time) []models.Reading {
	cutoff := tr.Cutoff(now)
	if cutoff.IsZero() {
		return readings
	}

	var out []models.Reading
	for _, r := range readings {
		if !r.Time.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// OnDate keeps readings taken on the given localized date.
func OnDate(readings []models.Reading, date models.Date) []models.Reading {
	var out []models.Reading
	for _, r := range readings {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}

// DistinctDates returns the sorted set of dates present in readings.
func DistinctDates(readings []models.Reading) []models.Date {
	seen := make(map[models.Date]struct{})
	for _, r := range readings {
		seen[r.Date] = struct{}{}
	}

	dates := make([]models.Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].String() < dates[j].String()
	})
	return dates
}

// SortByTime orders readings by instant, keeping equal timestamps stable.
func SortByTime(readings []models.Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Time.Before(readings[j].Time)
	})
}

// Latest returns the most recent reading, or nil for an empty dataset.
func Latest(readings []models.Reading) *models.Reading {
	if len(readings) == 0 {
		return nil
	}
	latest := readings[0]
	for _, r := range readings[1:] {
		if r.Time.After(latest.Time) {
			latest = r
		}
	}
	return &latest
}
