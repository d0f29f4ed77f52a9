package models

import "time"

// Source identifies where a snapshot's readings came from.
type Source string

const (
	// SourceJSON parses the raw speed test files.
	SourceJSON Source = "json"
	// SourceSQL reads back a previously persisted table.
	SourceSQL Source = "sql"
)

// LoadReport counts how the loader treated each record.
type LoadReport struct {
	Files     int      `json:"files"`
	Parsed    int      `json:"parsed"`
	Recovered int      `json:"recovered"`
	Skipped   int      `json:"skipped"`
	Reasons   []string `json:"reasons,omitempty"`
}

// Snapshot is the enriched dataset together with every aggregate the
// dashboard renders.
type Snapshot struct {
	BuiltAt  time.Time `json:"built_at"`
	Source   Source    `json:"source"`
	Timezone string    `json:"timezone"`

	Readings []Reading `json:"-"`
	Latest   *Reading  `json:"latest"`
	Days     int       `json:"days"`

	Overall   Summaries `json:"overall"`
	Last24h   Summaries `json:"last_24h"`
	ByDate    Summaries `json:"by_date"`
	ByWeekday Summaries `json:"by_weekday"`
	ByHour    Summaries `json:"by_hour"`

	Report LoadReport `json:"report"`
}

// HasData reports whether the snapshot holds any readings.
func (s *Snapshot) HasData() bool {
	return s != nil && len(s.Readings) > 0
}

// Count returns the number of readings.
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Readings)
}
