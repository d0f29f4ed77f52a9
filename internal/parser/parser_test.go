package parser

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/j-veylop/speed-dashboard/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestParse_CalendarFields(t *testing.T) {
	tests := []struct {
		name      string
		timestamp string
		tz        string
		wantDate  string
		wantDay   string
		wantHour  int
	}{
		{"UTC", "2020-10-12T03:09:18.231187Z", "", "2020-10-12", "Monday", 3},
		{"CentralDaylight", "2020-10-12T03:09:18.231187Z", "US/Central", "2020-10-11", "Sunday", 22},
		{"CentralStandard", "2020-11-12T03:09:18.231187Z", "US/Central", "2020-11-11", "Wednesday", 21},
		{"NoOffsetAssumedUTC", "2020-10-12T03:09:18", "", "2020-10-12", "Monday", 3},
		{"ExplicitOffset", "2020-10-12T03:09:18+02:00", "", "2020-10-12", "Monday", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, err := Parse([]models.RawReading{{Timestamp: tt.timestamp, Download: ptr(1e6)}}, tt.tz)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if len(readings) != 1 {
				t.Fatalf("len = %d, want 1", len(readings))
			}
			r := readings[0]
			if r.Date.String() != tt.wantDate {
				t.Errorf("Date = %s, want %s", r.Date, tt.wantDate)
			}
			if r.DayOfWeek != tt.wantDay {
				t.Errorf("DayOfWeek = %s, want %s", r.DayOfWeek, tt.wantDay)
			}
			if r.HourOfDay != tt.wantHour {
				t.Errorf("HourOfDay = %d, want %d", r.HourOfDay, tt.wantHour)
			}
		})
	}
}

func TestParse_UnitConversion(t *testing.T) {
	raw := []models.RawReading{
		{Timestamp: "2020-10-12T03:09:18Z", Download: ptr(1000000), Upload: ptr(2500000), Ping: ptr(14.2)},
		{Timestamp: "2020-10-12T04:09:18Z", Download: ptr(87654321.5), Upload: ptr(1)},
	}

	readings, err := Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if readings[0].DownloadMbps != 1.0 {
		t.Errorf("DownloadMbps = %v, want 1.0", readings[0].DownloadMbps)
	}
	if readings[0].UploadMbps != 2.5 {
		t.Errorf("UploadMbps = %v, want 2.5", readings[0].UploadMbps)
	}
	if readings[0].Ping != 14.2 {
		t.Errorf("Ping = %v, want 14.2", readings[0].Ping)
	}
	if math.Abs(readings[1].DownloadMbps-87.6543215) > 1e-9 {
		t.Errorf("DownloadMbps = %v, want 87.6543215", readings[1].DownloadMbps)
	}
	if readings[1].UploadMbps != 1e-6 {
		t.Errorf("UploadMbps = %v, want 1e-6", readings[1].UploadMbps)
	}
}

func TestParse_NullNormalization(t *testing.T) {
	readings, err := Parse([]models.RawReading{{Timestamp: "2020-10-12T03:09:18Z"}}, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	r := readings[0]
	if r.Download != 0 || r.Upload != 0 || r.Ping != 0 {
		t.Errorf("metrics = %v/%v/%v, want zeros", r.Download, r.Upload, r.Ping)
	}
	if r.DownloadMbps != 0 || r.UploadMbps != 0 {
		t.Errorf("mbps = %v/%v, want zeros", r.DownloadMbps, r.UploadMbps)
	}
	if !r.NoConnection() {
		t.Error("zero-filled reading should report NoConnection")
	}
}

func TestParse_PreservesTimestampString(t *testing.T) {
	const ts = "2020-10-12T03:09:18.231187Z"
	for _, tz := range []string{"", "US/Central", "Asia/Tokyo"} {
		readings, err := Parse([]models.RawReading{{Timestamp: ts}}, tz)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tz, err)
		}
		if readings[0].TimestampString != ts {
			t.Errorf("tz %q: TimestampString = %q, want %q", tz, readings[0].TimestampString, ts)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := []models.RawReading{
		{Timestamp: "2020-10-12T03:09:18.231187Z", Download: ptr(1e6), Upload: ptr(5e5), Ping: ptr(20)},
		{Timestamp: "2020-11-12T03:09:18.231187Z"},
	}

	first, err := Parse(raw, "US/Central")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	again := make([]models.RawReading, len(first))
	for i, r := range first {
		again[i] = r.Raw()
	}
	second, err := Parse(again, "US/Central")
	if err != nil {
		t.Fatalf("second Parse() error: %v", err)
	}

	for i := range first {
		a, b := first[i], second[i]
		if !a.Time.Equal(b.Time) || a.Time.Location().String() != b.Time.Location().String() {
			t.Errorf("[%d] Time changed: %v -> %v", i, a.Time, b.Time)
		}
		a.Time, b.Time = time.Time{}, time.Time{}
		if a != b {
			t.Errorf("[%d] reading changed:\n%+v\n%+v", i, first[i], second[i])
		}
	}

	localized, err := Localize(first, "US/Central")
	if err != nil {
		t.Fatalf("Localize() error: %v", err)
	}
	for i := range first {
		if localized[i].Date != first[i].Date || localized[i].HourOfDay != first[i].HourOfDay {
			t.Errorf("[%d] Localize changed calendar fields", i)
		}
	}
}

func TestLocalize_ChangesZone(t *testing.T) {
	readings, err := Parse([]models.RawReading{{Timestamp: "2020-10-12T03:09:18Z"}}, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	localized, err := Localize(readings, "US/Central")
	if err != nil {
		t.Fatalf("Localize() error: %v", err)
	}
	if localized[0].DayOfWeek != "Sunday" || localized[0].HourOfDay != 22 {
		t.Errorf("got %s %d, want Sunday 22", localized[0].DayOfWeek, localized[0].HourOfDay)
	}
	if readings[0].DayOfWeek != "Monday" {
		t.Error("Localize mutated its input")
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2020-10-12T03:09:18.231187Z", time.Date(2020, 10, 12, 3, 9, 18, 231187000, time.UTC)},
		{"2020-11-12T03:09:18+0000", time.Date(2020, 11, 12, 3, 9, 18, 0, time.UTC)},
		{"2020-11-12T03:09:18.5-0600", time.Date(2020, 11, 12, 9, 9, 18, 500000000, time.UTC)},
		{"2020-11-12 03:09:18+01:00", time.Date(2020, 11, 12, 2, 9, 18, 0, time.UTC)},
		{"2020-11-12T03:09:18", time.Date(2020, 11, 12, 3, 9, 18, 0, time.UTC)},
		{"2020-11-12", time.Date(2020, 11, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) error: %v", tt.in, err)
			}
			if !got.Equal(tt.want) || got.Location() != time.UTC {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_DateOnlyLocalized(t *testing.T) {
	readings, err := Parse([]models.RawReading{{Timestamp: "2020-11-12"}}, "US/Central")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r := readings[0]
	if r.Date.String() != "2020-11-11" || r.DayOfWeek != "Wednesday" || r.HourOfDay != 18 {
		t.Errorf("got %s %s %d", r.Date, r.DayOfWeek, r.HourOfDay)
	}
}

func TestParse_InvalidTimestamp(t *testing.T) {
	raw := []models.RawReading{
		{Timestamp: "2020-10-12T03:09:18Z"},
		{Timestamp: "not a date"},
	}

	readings, err := Parse(raw, "")
	if err == nil {
		t.Fatal("expected error")
	}
	if readings != nil {
		t.Errorf("expected no partial result, got %d readings", len(readings))
	}
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("error %v does not match ErrInvalidTimestamp", err)
	}
	var tsErr *TimestampError
	if !errors.As(err, &tsErr) {
		t.Fatalf("error %T is not a *TimestampError", err)
	}
	if tsErr.Index != 1 || tsErr.Value != "not a date" {
		t.Errorf("TimestampError = %+v", tsErr)
	}
}

func TestParse_EmptyTimestamp(t *testing.T) {
	_, err := Parse([]models.RawReading{{Timestamp: ""}}, "")
	if !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("error = %v, want ErrInvalidTimestamp", err)
	}
}

func TestParse_UnknownTimezone(t *testing.T) {
	_, err := Parse([]models.RawReading{{Timestamp: "2020-10-12T03:09:18Z"}}, "Mars/Olympus_Mons")
	if !errors.Is(err, ErrUnknownTimezone) {
		t.Errorf("error = %v, want ErrUnknownTimezone", err)
	}
}

func TestParse_KeepsMetadata(t *testing.T) {
	raw := []models.RawReading{{
		Timestamp:     "2020-10-12T03:09:18Z",
		ServerName:    "Chicago, IL",
		ServerCountry: "United States",
		ISP:           "Example ISP",
		Recovered:     true,
	}}

	readings, err := Parse(raw, "")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	r := readings[0]
	if r.ServerName != "Chicago, IL" || r.ServerCountry != "United States" || r.ISP != "Example ISP" || !r.Recovered {
		t.Errorf("metadata not carried: %+v", r)
	}
}

func TestParse_Empty(t *testing.T) {
	readings, err := Parse(nil, "US/Central")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(readings) != 0 {
		t.Errorf("len = %d, want 0", len(readings))
	}
}
