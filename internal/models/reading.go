// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// RawReading is a single speed test result as it arrives from the data files.
// Missing metrics mean the test could not reach the network.
type RawReading struct {
	Timestamp     string
	Download      *float64 // bytes/sec
	Upload        *float64 // bytes/sec
	Ping          *float64 // milliseconds
	ServerName    string
	ServerCountry string
	ISP           string

	// Recovered marks a timestamp-only placeholder recovered from a file name.
	Recovered bool
}

// Reading is an enriched speed test result. It is created by the parser and
// never mutated afterwards.
type Reading struct {
	// Time is the parsed instant, expressed in the localization zone.
	Time time.Time `json:"timestamp"`
	// TimestampString is the untouched wire value of the timestamp field.
	TimestampString string `json:"_timestamp_string"`

	Download     float64 `json:"download"`
	Upload       float64 `json:"upload"`
	Ping         float64 `json:"ping"`
	DownloadMbps float64 `json:"download_mbps"`
	UploadMbps   float64 `json:"upload_mbps"`

	Date      Date   `json:"date"`
	DayOfWeek string `json:"day_of_week"`
	HourOfDay int    `json:"hour_of_day"`

	ServerName    string `json:"server_name,omitempty"`
	ServerCountry string `json:"server_country,omitempty"`
	ISP           string `json:"isp,omitempty"`
	Recovered     bool   `json:"recovered,omitempty"`
}

// Raw projects the reading back onto the loader's record shape. Metrics are
// already normalized, so they are always present.
func (r Reading) Raw() RawReading {
	download, upload, ping := r.Download, r.Upload, r.Ping
	return RawReading{
		Timestamp:     r.TimestampString,
		Download:      &download,
		Upload:        &upload,
		Ping:          &ping,
		ServerName:    r.ServerName,
		ServerCountry: r.ServerCountry,
		ISP:           r.ISP,
		Recovered:     r.Recovered,
	}
}

// NoConnection reports whether the test recorded no throughput at all.
func (r Reading) NoConnection() bool {
	return r.Download == 0 && r.Upload == 0
}

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a "2006-01-02" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String returns the date in "2006-01-02" form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
