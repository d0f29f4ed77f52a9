// Package services provides service orchestration for the dashboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/speed-dashboard/internal/config"
	"github.com/j-veylop/speed-dashboard/internal/db"
	"github.com/j-veylop/speed-dashboard/internal/loader"
	"github.com/j-veylop/speed-dashboard/internal/logger"
	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/parser"
	"github.com/j-veylop/speed-dashboard/internal/stats"
)

type (
	// DataReloadedEvent is emitted when a new snapshot has been built.
	DataReloadedEvent struct {
		Snapshot *models.Snapshot
	}

	// OutageEvent is emitted when the newest reading turns into a no-connection result.
	OutageEvent struct {
		Reading models.Reading
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (DataReloadedEvent) isServiceEvent() {}
func (OutageEvent) isServiceEvent()       {}
func (ErrorEvent) isServiceEvent()        {}

// ErrNoDatabase is returned by operations that need the SQLite store when none is open.
var ErrNoDatabase = errors.New("database not initialized")

// Manager owns the data pipeline and routes its events to subscribers.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	loader      *loader.Loader
	database    *db.DB
	watcher     *loader.Watcher
	location    *time.Location
	snapshot    *models.Snapshot
	subscribers []chan ServiceEvent

	// reloadMu serializes pipeline runs.
	reloadMu   sync.Mutex
	lastLatest *models.Reading

	notify func(title, message string) error
	now    func() time.Time
}

// NewManager opens the database and, when enabled, starts watching the data
// directory. No data is loaded until Reload is called.
func NewManager(cfg *config.Config) (*Manager, error) {
	loc, err := parser.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		loader:   loader.New(cfg.DataPath, cfg.RecoveryPolicy),
		location: loc,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now: time.Now,
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.WatchData && cfg.Source == models.SourceJSON {
		m.watcher, err = loader.NewWatcher(cfg.DataPath, m.handleFileChange, func(err error) {
			m.broadcast(ErrorEvent{Service: "watcher", Error: err})
		})
		if err != nil {
			// The dashboard still works without live reload.
			logger.Warn("Data watcher disabled", "path", cfg.DataPath, "error", err)
		}
	}

	return m, nil
}

// handleFileChange reloads after new result files land in the data directory.
func (m *Manager) handleFileChange() {
	if _, err := m.Reload(context.Background()); err != nil {
		logger.Error("Reload after file change failed", "error", err)
	}
}

// Reload runs the pipeline from the configured source and publishes the
// resulting snapshot.
func (m *Manager) Reload(ctx context.Context) (*models.Snapshot, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	start := m.now()
	snap, err := m.build(ctx)
	if err != nil {
		m.broadcast(ErrorEvent{Service: "data", Error: err})
		return nil, err
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	logger.Info("Data reloaded",
		"source", snap.Source,
		"readings", snap.Count(),
		"recovered", snap.Report.Recovered,
		"skipped", snap.Report.Skipped,
		"took", time.Since(start))

	m.broadcast(DataReloadedEvent{Snapshot: snap})
	m.checkOutage(snap.Latest)
	return snap, nil
}

func (m *Manager) build(ctx context.Context) (*models.Snapshot, error) {
	var (
		readings []models.Reading
		report   models.LoadReport
		err      error
	)

	switch m.cfg.Source {
	case models.SourceSQL:
		readings, err = m.loadFromSQL(ctx)
		report = models.LoadReport{Parsed: len(readings)}
	default:
		readings, report, err = m.loadFromJSON(ctx)
		if err == nil && m.cfg.PersistOnLoad {
			err = m.persist(ctx, readings)
		}
	}
	if err != nil {
		return nil, err
	}

	stats.SortByTime(readings)
	return BuildSnapshot(readings, m.now(), m.cfg.Source, m.cfg.Timezone, report), nil
}

func (m *Manager) loadFromJSON(ctx context.Context) ([]models.Reading, models.LoadReport, error) {
	result, err := m.loader.Load(ctx)
	if err != nil {
		return nil, models.LoadReport{}, fmt.Errorf("failed to load data files: %w", err)
	}

	readings, err := parser.ParseIn(result.Records(), m.location)
	if err != nil {
		return nil, models.LoadReport{}, fmt.Errorf("failed to parse readings: %w", err)
	}
	return readings, result.Report(), nil
}

func (m *Manager) loadFromSQL(ctx context.Context) ([]models.Reading, error) {
	if m.database == nil {
		return nil, ErrNoDatabase
	}
	stored, err := m.database.LoadReadings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored readings: %w", err)
	}
	// Stored rows may have been written under another localization.
	return parser.Localize(stored, m.cfg.Timezone)
}

func (m *Manager) persist(ctx context.Context, readings []models.Reading) error {
	if m.database == nil {
		return ErrNoDatabase
	}
	if err := m.database.ReplaceReadings(ctx, readings); err != nil {
		return fmt.Errorf("failed to persist readings: %w", err)
	}
	return nil
}

// Build parses the JSON files and replaces the stored table with the
// result, whatever the configured source. It returns the number of rows written.
func (m *Manager) Build(ctx context.Context) (int, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	readings, report, err := m.loadFromJSON(ctx)
	if err != nil {
		return 0, err
	}
	stats.SortByTime(readings)
	if err := m.persist(ctx, readings); err != nil {
		return 0, err
	}

	logger.Info("Database built",
		"path", m.database.Path(),
		"files", report.Files,
		"rows", len(readings),
		"skipped", report.Skipped)
	return len(readings), nil
}

// checkOutage notifies when the newest reading flips to a no-connection
// result. The first snapshot only records the baseline.
func (m *Manager) checkOutage(latest *models.Reading) {
	previous := m.lastLatest
	m.lastLatest = latest

	if previous == nil || latest == nil {
		return
	}
	if !latest.Time.After(previous.Time) || !latest.NoConnection() || previous.NoConnection() {
		return
	}

	m.broadcast(OutageEvent{Reading: *latest})

	if !m.cfg.NotifyOutages {
		return
	}
	title := "Internet outage detected"
	body := fmt.Sprintf("Speed test at %s recorded no connection", latest.Time.Format("Jan 2 15:04"))
	if err := m.notify(title, body); err != nil {
		logger.Warn("Desktop notification failed", "error", err)
	}
}

// Snapshot returns the most recent snapshot, or nil before the first reload.
func (m *Manager) Snapshot() *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Config returns the configuration the manager was created with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Watching reports whether live reload is active.
func (m *Manager) Watching() bool {
	return m.watcher != nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close stops the watcher, releases subscribers and closes the database.
func (m *Manager) Close() error {
	var errs []error

	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
