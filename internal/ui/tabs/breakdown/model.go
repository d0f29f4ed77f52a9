// Package breakdown provides the tab that compares readings grouped by
// date, weekday or hour of day.
package breakdown

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/speed-dashboard/internal/app"
	"github.com/j-veylop/speed-dashboard/internal/models"
)

// Grouping selects which per-group table is shown.
type Grouping int

const (
	// GroupByDate groups readings by calendar date.
	GroupByDate Grouping = iota
	// GroupByWeekday groups readings by day of week, Monday first.
	GroupByWeekday
	// GroupByHour groups readings by hour of day.
	GroupByHour
)

// String returns the display name for a grouping.
func (g Grouping) String() string {
	switch g {
	case GroupByDate:
		return "Date"
	case GroupByWeekday:
		return "Weekday"
	case GroupByHour:
		return "Hour"
	default:
		return "Unknown"
	}
}

// Next cycles to the next grouping. Unknown values restart at GroupByDate.
func (g Grouping) Next() Grouping {
	switch g {
	case GroupByDate:
		return GroupByWeekday
	case GroupByWeekday:
		return GroupByHour
	default:
		return GroupByDate
	}
}

// Table returns the grouping's summaries from snap.
func (g Grouping) Table(snap *models.Snapshot) models.Summaries {
	if snap == nil {
		return nil
	}
	switch g {
	case GroupByWeekday:
		return snap.ByWeekday
	case GroupByHour:
		return snap.ByHour
	default:
		return snap.ByDate
	}
}

// keyMap defines the key bindings specific to the breakdown tab.
type keyMap struct {
	ToggleGroup key.Binding
	Metric      key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the breakdown tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleGroup: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "grouping"),
		),
		Metric: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "metric"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the breakdown tab state.
type Model struct {
	state    *app.State
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	grouping Grouping
	metric   models.Metric
}

// New creates a new breakdown model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		grouping: GroupByWeekday,
		metric:   models.MetricDownload,
	}
}

// Init initializes the breakdown tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the breakdown tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	case app.TabSwitchMsg:
		if msg.Tab == app.TabBreakdown {
			m.viewport.GotoTop()
		}
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleGroup):
		m.grouping = m.grouping.Next()
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Metric):
		m.metric = m.metric.Next()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// Grouping returns the active grouping.
func (m *Model) Grouping() Grouping {
	return m.grouping
}

// Metric returns the active metric.
func (m *Model) Metric() models.Metric {
	return m.metric
}

// SetSize sets the available size for the breakdown tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleGroup,
		m.keys.Metric,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleGroup, m.keys.Metric},
		{m.keys.Up, m.keys.Down},
	}
}
