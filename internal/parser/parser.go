// Package parser turns raw speed test records into enriched readings.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	// Bundled zone database so localization does not depend on the host.
	_ "time/tzdata"

	"github.com/j-veylop/speed-dashboard/internal/models"
)

// RateScale converts the recorded rate into the Mbps columns. Decimal mega.
const RateScale = 1_000_000

var (
	// ErrInvalidTimestamp is returned when a record's timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrUnknownTimezone is returned for localization names missing from the zone database.
	ErrUnknownTimezone = errors.New("unknown timezone")
)

// TimestampError identifies the record that failed to parse.
type TimestampError struct {
	Index int
	Value string
	Err   error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("record %d: %v %q", e.Index, ErrInvalidTimestamp, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidTimestamp.
func (e *TimestampError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidTimestamp}
	}
	return []error{ErrInvalidTimestamp, e.Err}
}

// Layouts without an offset are read as UTC.
var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	time.DateOnly,
}

// ParseTimestamp parses an ISO-8601 timestamp. The result is always in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	var firstErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidTimestamp, s, firstErr)
}

// LoadLocation resolves an IANA zone name. The empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownTimezone, name, err)
	}
	return loc, nil
}

// Parse normalizes missing metrics to zero, rescales rates to Mbps and
// derives the calendar fields in the given localization. The first record
// with an unparsable timestamp fails the whole call.
func Parse(raw []models.RawReading, localization string) ([]models.Reading, error) {
	loc, err := LoadLocation(localization)
	if err != nil {
		return nil, err
	}
	return ParseIn(raw, loc)
}

// ParseIn is Parse with an already resolved location.
func ParseIn(raw []models.RawReading, loc *time.Location) ([]models.Reading, error) {
	if loc == nil {
		loc = time.UTC
	}

	readings := make([]models.Reading, 0, len(raw))
	for i, r := range raw {
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, &TimestampError{Index: i, Value: r.Timestamp, Err: err}
		}
		readings = append(readings, enrich(r, ts.In(loc)))
	}
	return readings, nil
}

// Localize re-expresses already enriched readings in another zone and
// recomputes their calendar fields. Metric values are left untouched.
func Localize(readings []models.Reading, localization string) ([]models.Reading, error) {
	loc, err := LoadLocation(localization)
	if err != nil {
		return nil, err
	}

	out := make([]models.Reading, len(readings))
	for i, r := range readings {
		r.Time = r.Time.In(loc)
		setCalendar(&r)
		out[i] = r
	}
	return out, nil
}

func enrich(r models.RawReading, t time.Time) models.Reading {
	reading := models.Reading{
		Time:            t,
		TimestampString: r.Timestamp,
		Download:        orZero(r.Download),
		Upload:          orZero(r.Upload),
		Ping:            orZero(r.Ping),
		ServerName:      r.ServerName,
		ServerCountry:   r.ServerCountry,
		ISP:             r.ISP,
		Recovered:       r.Recovered,
	}
	reading.DownloadMbps = reading.Download / RateScale
	reading.UploadMbps = reading.Upload / RateScale
	setCalendar(&reading)
	return reading
}

func setCalendar(r *models.Reading) {
	r.Date = models.DateOf(r.Time)
	r.DayOfWeek = r.Time.Weekday().String()
	r.HourOfDay = r.Time.Hour()
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
