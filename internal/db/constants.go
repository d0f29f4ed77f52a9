package db

// SQL fragments shared by the readings queries
const (
	// readingsTable holds the enriched dataset.
	readingsTable = "readings"

	// readingColumns is the column order used for both insert and select.
	readingColumns = `timestamp, timezone, _timestamp_string,
		download, upload, ping, download_mbps, upload_mbps,
		date, day_of_week, hour_of_day,
		server_name, server_country, isp, recovered`
)
