package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/speed-dashboard/internal/logger"
	"github.com/j-veylop/speed-dashboard/internal/models"
)

// Stored instants keep their offset; the zone name restores the location.
const storedTimeFormat = time.RFC3339Nano

var timeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReplaceReadings overwrites the stored dataset with readings in a single
// transaction.
func (db *DB) ReplaceReadings(ctx context.Context, readings []models.Reading) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+readingsTable); err != nil {
		return fmt.Errorf("failed to clear readings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO `+readingsTable+` (`+readingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range readings {
		_, err := stmt.ExecContext(ctx,
			r.Time.Format(storedTimeFormat),
			r.Time.Location().String(),
			r.TimestampString,
			r.Download,
			r.Upload,
			r.Ping,
			r.DownloadMbps,
			r.UploadMbps,
			r.Date.String(),
			r.DayOfWeek,
			r.HourOfDay,
			r.ServerName,
			r.ServerCountry,
			r.ISP,
			boolToInt(r.Recovered),
		)
		if err != nil {
			return fmt.Errorf("failed to insert reading %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit readings: %w", err)
	}

	logger.Debug("Replaced stored readings", "count", len(readings), "path", db.path)
	return nil
}

// LoadReadings returns the stored dataset in the order and shape it was
// written.
func (db *DB) LoadReadings(ctx context.Context) ([]models.Reading, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+readingColumns+`
		FROM `+readingsTable+`
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	locations := make(map[string]*time.Location)
	var readings []models.Reading
	for rows.Next() {
		var (
			r                     models.Reading
			timestamp, zone, date string
			recovered             int
		)
		if err := rows.Scan(
			&timestamp,
			&zone,
			&r.TimestampString,
			&r.Download,
			&r.Upload,
			&r.Ping,
			&r.DownloadMbps,
			&r.UploadMbps,
			&date,
			&r.DayOfWeek,
			&r.HourOfDay,
			&r.ServerName,
			&r.ServerCountry,
			&r.ISP,
			&recovered,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}

		t, ok := parseTimeString(timestamp)
		if !ok {
			return nil, fmt.Errorf("invalid stored timestamp %q", timestamp)
		}
		r.Time = t.In(lookupLocation(locations, zone, t))

		if r.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid stored date: %w", err)
		}
		r.Recovered = recovered != 0
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return readings, nil
}

// CountReadings returns the number of stored readings.
func (db *DB) CountReadings(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+readingsTable).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

// lookupLocation resolves a stored zone name, falling back to the fixed
// offset of t when the name is unknown to this host.
func lookupLocation(cache map[string]*time.Location, name string, t time.Time) *time.Location {
	if loc, ok := cache[name]; ok {
		return loc
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		zoneName, offset := t.Zone()
		logger.Warn("Unknown stored timezone, using fixed offset", "timezone", name, "offset", offset)
		loc = time.FixedZone(zoneName, offset)
	}
	cache[name] = loc
	return loc
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
