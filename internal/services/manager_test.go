package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/speed-dashboard/internal/config"
	"github.com/j-veylop/speed-dashboard/internal/loader"
	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/parser"
	"github.com/j-veylop/speed-dashboard/internal/stats"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "data")
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		t.Fatalf("failed to create data dir: %v", err)
	}
	return &config.Config{
		DataPath:        filepath.Join(dataDir, "*.json"),
		DatabasePath:    filepath.Join(tmpDir, "test.db"),
		Source:          models.SourceJSON,
		RecoveryPolicy:  loader.RecoveryTimestampOnly,
		RefreshInterval: time.Minute,
	}
}

func writeResult(t *testing.T, cfg *config.Config, name, content string) {
	t.Helper()
	path := filepath.Join(filepath.Dir(cfg.DataPath), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManager(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.Snapshot() != nil {
		t.Error("Snapshot should be nil before the first reload")
	}
	if mgr.Watching() {
		t.Error("Watcher should be off when WATCH_DATA is false")
	}
}

func TestNewManager_UnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Nowhere/Special"

	if _, err := NewManager(cfg); err == nil {
		t.Error("NewManager should fail for an unknown timezone")
	}
}

func TestManager_ReloadJSON(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "US/Central"
	writeResult(t, cfg, "2020-10-12T03:09:18Z.json",
		`{"download": 1000000, "upload": 500000, "ping": 20, "timestamp": "2020-10-12T03:09:18.231187Z"}`)
	writeResult(t, cfg, "2020-11-12T03:09:18Z.json", `{"download": 3000000`)

	mgr := newTestManager(t, cfg)
	snap, err := mgr.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if snap.Count() != 2 {
		t.Fatalf("Count = %d, want 2", snap.Count())
	}
	if snap.Report.Parsed != 1 || snap.Report.Recovered != 1 {
		t.Errorf("Report = %+v", snap.Report)
	}
	if snap.Days != 2 {
		t.Errorf("Days = %d, want 2", snap.Days)
	}

	first := snap.Readings[0]
	if first.DayOfWeek != "Sunday" || first.HourOfDay != 22 {
		t.Errorf("first reading localized to %s %d", first.DayOfWeek, first.HourOfDay)
	}
	if snap.Latest == nil || !snap.Latest.Recovered {
		t.Errorf("Latest = %+v, want the recovered placeholder", snap.Latest)
	}

	overall := snap.Overall.Overall(models.MetricDownload)
	if overall.Count.Value != 2 || overall.Mean.Value != 0.5 {
		t.Errorf("overall download = %+v", overall)
	}
	if len(snap.ByWeekday[models.MetricPing]) != 7 {
		t.Errorf("weekday table has %d rows, want 7", len(snap.ByWeekday[models.MetricPing]))
	}
	if mgr.Snapshot() != snap {
		t.Error("Snapshot() should return the latest build")
	}
}

func TestManager_ReloadBadTimestamp(t *testing.T) {
	cfg := testConfig(t)
	writeResult(t, cfg, "a.json", `{"timestamp": "yesterday"}`)

	mgr := newTestManager(t, cfg)
	ch, _ := mgr.Subscribe()

	if _, err := mgr.Reload(context.Background()); err == nil {
		t.Fatal("Reload should fail on an unparsable timestamp")
	}

	select {
	case event := <-ch:
		if e, ok := event.(ErrorEvent); !ok || e.Service != "data" {
			t.Errorf("event = %#v, want data ErrorEvent", event)
		}
	case <-time.After(time.Second):
		t.Error("no error event broadcast")
	}
}

func TestManager_BuildAndReloadSQL(t *testing.T) {
	cfg := testConfig(t)
	writeResult(t, cfg, "b.json", `[
		{"download": 2000000, "upload": 1000000, "ping": 10, "timestamp": "2020-10-12T03:09:18Z"},
		{"download": 4000000, "upload": 1000000, "ping": 30, "timestamp": "2020-10-13T03:09:18Z"}
	]`)

	builder := newTestManager(t, cfg)
	n, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Build wrote %d rows, want 2", n)
	}
	if err := builder.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	sqlCfg := *cfg
	sqlCfg.Source = models.SourceSQL
	sqlCfg.Timezone = "US/Central"
	mgr := newTestManager(t, &sqlCfg)

	snap, err := mgr.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if snap.Source != models.SourceSQL || snap.Count() != 2 {
		t.Fatalf("snapshot = %s with %d readings", snap.Source, snap.Count())
	}
	if snap.Readings[0].DayOfWeek != "Sunday" {
		t.Errorf("stored readings were not relocalized: %s", snap.Readings[0].DayOfWeek)
	}
	if got := snap.Overall.Overall(models.MetricDownload).Median.Value; got != 3 {
		t.Errorf("median download = %v, want 3", got)
	}
}

func TestManager_PersistOnLoad(t *testing.T) {
	cfg := testConfig(t)
	cfg.PersistOnLoad = true
	writeResult(t, cfg, "c.json", `{"download": 1, "timestamp": "2020-10-12T03:09:18Z"}`)

	mgr := newTestManager(t, cfg)
	if _, err := mgr.Reload(context.Background()); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	count, err := mgr.Database().CountReadings(context.Background())
	if err != nil {
		t.Fatalf("CountReadings failed: %v", err)
	}
	if count != 1 {
		t.Errorf("stored %d readings, want 1", count)
	}
}

func TestManager_OutageNotification(t *testing.T) {
	cfg := testConfig(t)
	cfg.NotifyOutages = true
	writeResult(t, cfg, "1.json", `{"download": 5000000, "upload": 1000000, "ping": 9, "timestamp": "2020-10-12T03:00:00Z"}`)

	mgr := newTestManager(t, cfg)
	var notified []string
	mgr.notify = func(title, _ string) error {
		notified = append(notified, title)
		return nil
	}
	ch, _ := mgr.Subscribe()

	if _, err := mgr.Reload(context.Background()); err != nil {
		t.Fatalf("first Reload failed: %v", err)
	}
	writeResult(t, cfg, "2.json", `{"download": null, "upload": null, "ping": null, "timestamp": "2020-10-12T04:00:00Z"}`)
	if _, err := mgr.Reload(context.Background()); err != nil {
		t.Fatalf("second Reload failed: %v", err)
	}
	// Same outage again must not repeat the notification
	if _, err := mgr.Reload(context.Background()); err != nil {
		t.Fatalf("third Reload failed: %v", err)
	}

	if len(notified) != 1 {
		t.Errorf("notifications = %v, want exactly one", notified)
	}

	outages := 0
	for len(ch) > 0 {
		if _, ok := (<-ch).(OutageEvent); ok {
			outages++
		}
	}
	if outages != 1 {
		t.Errorf("outage events = %d, want 1", outages)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr := newTestManager(t, testConfig(t))

	ch, cmd := mgr.Subscribe()
	if cmd == nil {
		t.Fatal("Subscribe should return a command")
	}

	mgr.broadcast(ErrorEvent{Service: "test", Error: errors.New("boom")})
	msg := cmd()
	if e, ok := msg.(ErrorEvent); !ok || e.Service != "test" {
		t.Errorf("cmd() = %#v", msg)
	}

	mgr.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Unsubscribe")
	}
	if msg := WaitForEvent(ch)(); msg != nil {
		t.Errorf("closed channel should yield nil msg, got %#v", msg)
	}
}

func TestManager_WatcherReloads(t *testing.T) {
	cfg := testConfig(t)
	cfg.WatchData = true

	mgr := newTestManager(t, cfg)
	if !mgr.Watching() {
		t.Skip("file watching unavailable on this system")
	}
	ch, _ := mgr.Subscribe()

	writeResult(t, cfg, "2020-10-12T03:09:18Z.json", `{"download": 1, "timestamp": "2020-10-12T03:09:18Z"}`)

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-ch:
			if e, ok := event.(DataReloadedEvent); ok && e.Snapshot.Count() == 1 {
				return
			}
		case <-deadline:
			t.Fatal("no reload after new data file")
		}
	}
}

func TestBuildSnapshot_Empty(t *testing.T) {
	snap := BuildSnapshot(nil, time.Now(), models.SourceJSON, "", models.LoadReport{})

	if snap.HasData() {
		t.Error("empty snapshot should report no data")
	}
	if snap.Latest != nil {
		t.Error("Latest should be nil")
	}
	if s := snap.Overall.Overall(models.MetricDownload); !s.Count.Valid || s.Count.Value != 0 || s.Mean.Valid {
		t.Errorf("overall summary should have a zero count and missing stats, got %+v", s)
	}
	if len(snap.ByWeekday[models.MetricDownload]) != 7 {
		t.Error("weekday table should always have seven rows")
	}
}

func TestBuildSnapshot_StaleLast24h(t *testing.T) {
	readings, err := parser.Parse([]models.RawReading{
		{Timestamp: "2020-10-01T03:09:18Z"},
	}, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	now := time.Date(2020, 10, 14, 12, 0, 0, 0, time.UTC)
	snap := BuildSnapshot(readings, now, models.SourceJSON, "", models.LoadReport{})

	for _, metric := range models.Metrics {
		table := snap.Last24h[metric]
		if len(table) != 1 || table[0].Key != stats.AllKey {
			t.Fatalf("%s: Last24h = %+v, want one all row", metric, table)
		}
		if s := table[0].Summary; !s.Count.Valid || s.Count.Value != 0 || s.Median.Valid {
			t.Errorf("%s: summary = %+v, want zero count", metric, s)
		}
	}
	if got := snap.Overall.Overall(models.MetricDownload).Count.Value; got != 1 {
		t.Errorf("overall count = %d, want 1", got)
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2020, 10, 12, 12, 0, 0, 0, time.UTC)
	snap := &models.Snapshot{Readings: []models.Reading{
		{Time: now.Add(-time.Hour)},
		{Time: now.Add(-48 * time.Hour)},
	}}

	if got := Window(snap, models.TimeRange24Hours, now); len(got) != 1 {
		t.Errorf("24h window = %d readings, want 1", len(got))
	}
	if Window(nil, models.TimeRangeAllTime, now) != nil {
		t.Error("nil snapshot should give no readings")
	}
}
