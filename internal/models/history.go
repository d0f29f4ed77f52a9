// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Key returns the short name used in query strings.
func (t TimeRange) Key() string {
	switch t {
	case TimeRange24Hours:
		return "24h"
	case TimeRange7Days:
		return "7d"
	case TimeRange30Days:
		return "30d"
	default:
		return "all"
	}
}

// Duration returns the window length (0 = unlimited).
func (t TimeRange) Duration() time.Duration {
	switch t {
	case TimeRange24Hours:
		return 24 * time.Hour
	case TimeRange7Days:
		return 7 * 24 * time.Hour
	case TimeRange30Days:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// Cutoff returns the earliest instant inside the range, or the zero time
// when the range is unlimited.
func (t TimeRange) Cutoff(now time.Time) time.Time {
	d := t.Duration()
	if d == 0 {
		return time.Time{}
	}
	return now.Add(-d)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// ParseTimeRange resolves a short range name. An empty string means all time.
func ParseTimeRange(s string) (TimeRange, error) {
	switch s {
	case "24h":
		return TimeRange24Hours, nil
	case "7d":
		return TimeRange7Days, nil
	case "30d":
		return TimeRange30Days, nil
	case "", "all":
		return TimeRangeAllTime, nil
	default:
		return TimeRangeAllTime, fmt.Errorf("unknown time range %q", s)
	}
}
