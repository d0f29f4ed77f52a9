package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	// 1: enriched readings, one row per reading
	`CREATE TABLE IF NOT EXISTS ` + readingsTable + ` (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		_timestamp_string TEXT NOT NULL,
		download REAL NOT NULL DEFAULT 0,
		upload REAL NOT NULL DEFAULT 0,
		ping REAL NOT NULL DEFAULT 0,
		download_mbps REAL NOT NULL DEFAULT 0,
		upload_mbps REAL NOT NULL DEFAULT 0,
		date TEXT NOT NULL,
		day_of_week TEXT NOT NULL,
		hour_of_day INTEGER NOT NULL,
		server_name TEXT NOT NULL DEFAULT '',
		server_country TEXT NOT NULL DEFAULT '',
		isp TEXT NOT NULL DEFAULT '',
		recovered INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_readings_date ON ` + readingsTable + `(date);`,
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) migrate() error {
	ctx := context.Background()

	version, err := db.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		if _, err := db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("failed to record schema version %d: %w", i+1, err)
		}
	}
	return nil
}
