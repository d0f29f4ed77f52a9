package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMetric_Value(t *testing.T) {
	r := Reading{DownloadMbps: 12.5, UploadMbps: 3.25, Ping: 18}

	tests := []struct {
		metric Metric
		want   float64
	}{
		{MetricDownload, 12.5},
		{MetricUpload, 3.25},
		{MetricPing, 18},
		{Metric("jitter"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			if got := tt.metric.Value(r); got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetric_Next(t *testing.T) {
	if got := MetricDownload.Next(); got != MetricUpload {
		t.Errorf("download.Next() = %v", got)
	}
	if got := MetricPing.Next(); got != MetricDownload {
		t.Errorf("ping.Next() = %v", got)
	}
}

func TestParseMetric(t *testing.T) {
	if m, err := ParseMetric("ping"); err != nil || m != MetricPing {
		t.Errorf("ParseMetric(ping) = %v, %v", m, err)
	}
	if _, err := ParseMetric("download"); err == nil {
		t.Error("expected error for unscaled column name")
	}
}

func TestOptional_JSON(t *testing.T) {
	s := Summary{Count: Some(1), Median: Some(2.5), Mean: Some(2.5)}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"count":1,"median":2.5,"mean":2.5,"std":null}`
	if string(b) != want {
		t.Errorf("Marshal = %s, want %s", b, want)
	}

	var decoded Summary
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if decoded != s {
		t.Errorf("decoded = %+v, want %+v", decoded, s)
	}
}

func TestTable_Lookup(t *testing.T) {
	table := Table{
		{Key: "Monday", Summary: Summary{Count: Some(2)}},
		{Key: "Tuesday"},
	}

	row, ok := table.Lookup("Monday")
	if !ok || row.Summary.Count.Value != 2 {
		t.Errorf("Lookup(Monday) = %+v, %v", row, ok)
	}
	if _, ok := table.Lookup("Sunday"); ok {
		t.Error("Lookup(Sunday) should miss")
	}
	if keys := table.Keys(); len(keys) != 2 || keys[1] != "Tuesday" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestReading_Raw(t *testing.T) {
	r := Reading{
		TimestampString: "2020-10-12T03:09:18.231187Z",
		Download:        1e6,
		Upload:          0,
		Ping:            12,
		ISP:             "Example ISP",
		Recovered:       true,
	}

	raw := r.Raw()
	if raw.Timestamp != r.TimestampString {
		t.Errorf("Timestamp = %q", raw.Timestamp)
	}
	if raw.Download == nil || *raw.Download != 1e6 {
		t.Errorf("Download = %v", raw.Download)
	}
	if raw.Upload == nil || *raw.Upload != 0 {
		t.Errorf("Upload = %v", raw.Upload)
	}
	if !raw.Recovered || raw.ISP != "Example ISP" {
		t.Errorf("metadata lost: %+v", raw)
	}
	if r.NoConnection() {
		t.Error("reading with download should not be an outage")
	}
}

func TestDate(t *testing.T) {
	d := DateOf(time.Date(2020, 10, 11, 22, 9, 0, 0, time.UTC))
	if d.String() != "2020-10-11" {
		t.Errorf("String() = %q", d.String())
	}

	parsed, err := ParseDate("2020-10-11")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if parsed != d {
		t.Errorf("ParseDate = %v, want %v", parsed, d)
	}
	if _, err := ParseDate("11/10/2020"); err == nil {
		t.Error("expected error for non ISO date")
	}
	if !(Date{}).IsZero() {
		t.Error("zero Date should report IsZero")
	}
}
