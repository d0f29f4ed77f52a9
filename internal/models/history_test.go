package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want TimeRange
	}{
		{"24Hours -> 7Days", TimeRange24Hours, TimeRange7Days},
		{"7Days -> 30Days", TimeRange7Days, TimeRange30Days},
		{"30Days -> AllTime", TimeRange30Days, TimeRangeAllTime},
		{"AllTime -> 24Hours", TimeRangeAllTime, TimeRange24Hours},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Next(); got != tt.want {
				t.Errorf("TimeRange.Next() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Cutoff(t *testing.T) {
	now := time.Date(2020, 10, 12, 12, 0, 0, 0, time.UTC)

	if got := TimeRange24Hours.Cutoff(now); !got.Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("24h cutoff = %v", got)
	}
	if got := TimeRange7Days.Cutoff(now); !got.Equal(time.Date(2020, 10, 5, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("7d cutoff = %v", got)
	}
	if got := TimeRangeAllTime.Cutoff(now); !got.IsZero() {
		t.Errorf("all time cutoff = %v, want zero", got)
	}
}

func TestParseTimeRange(t *testing.T) {
	for _, tr := range []TimeRange{TimeRange24Hours, TimeRange7Days, TimeRange30Days, TimeRangeAllTime} {
		got, err := ParseTimeRange(tr.Key())
		if err != nil {
			t.Fatalf("ParseTimeRange(%q) error: %v", tr.Key(), err)
		}
		if got != tr {
			t.Errorf("ParseTimeRange(%q) = %v, want %v", tr.Key(), got, tr)
		}
	}

	if got, err := ParseTimeRange(""); err != nil || got != TimeRangeAllTime {
		t.Errorf("ParseTimeRange(\"\") = %v, %v", got, err)
	}
	if _, err := ParseTimeRange("1y"); err == nil {
		t.Error("expected error for unknown range")
	}
}
