// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
)

// Metric names a column the aggregator summarizes.
type Metric string

const (
	// MetricDownload is download throughput in megabits per second.
	MetricDownload Metric = "download_mbps"
	// MetricUpload is upload throughput in megabits per second.
	MetricUpload Metric = "upload_mbps"
	// MetricPing is latency in milliseconds.
	MetricPing Metric = "ping"
)

// Metrics lists every summarized metric in display order.
var Metrics = []Metric{MetricDownload, MetricUpload, MetricPing}

// Value extracts the metric from a reading.
func (m Metric) Value(r Reading) float64 {
	switch m {
	case MetricDownload:
		return r.DownloadMbps
	case MetricUpload:
		return r.UploadMbps
	case MetricPing:
		return r.Ping
	default:
		return 0
	}
}

// Unit returns the display unit of the metric.
func (m Metric) Unit() string {
	if m == MetricPing {
		return "ms"
	}
	return "Mbps"
}

// Title returns a human readable name for the metric.
func (m Metric) Title() string {
	switch m {
	case MetricDownload:
		return "Download"
	case MetricUpload:
		return "Upload"
	case MetricPing:
		return "Ping"
	default:
		return string(m)
	}
}

// Next cycles to the next metric.
func (m Metric) Next() Metric {
	for i, metric := range Metrics {
		if metric == m {
			return Metrics[(i+1)%len(Metrics)]
		}
	}
	return Metrics[0]
}

// ParseMetric resolves a metric name.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Optional is a value that may be missing. Missing statistics marshal to null.
type Optional[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	if err := json.Unmarshal(b, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Summary holds the descriptive statistics of one metric within one group.
type Summary struct {
	Count  Optional[int]     `json:"count"`
	Median Optional[float64] `json:"median"`
	Mean   Optional[float64] `json:"mean"`
	Std    Optional[float64] `json:"std"`
}

// Row is one group of a summary table.
type Row struct {
	Key     string  `json:"key"`
	Summary Summary `json:"summary"`
}

// Table is a per-group summary of a single metric, in group order.
type Table []Row

// Lookup returns the row for key.
func (t Table) Lookup(key string) (Row, bool) {
	for _, row := range t {
		if row.Key == key {
			return row, true
		}
	}
	return Row{}, false
}

// Keys returns the group keys in table order.
func (t Table) Keys() []string {
	keys := make([]string, len(t))
	for i, row := range t {
		keys[i] = row.Key
	}
	return keys
}

// Summaries maps each metric to its summary table.
type Summaries map[Metric]Table

// Overall returns the single-row summary of a metric, as produced for an
// ungrouped dataset.
func (s Summaries) Overall(m Metric) Summary {
	table := s[m]
	if len(table) == 0 {
		return Summary{}
	}
	return table[0].Summary
}
