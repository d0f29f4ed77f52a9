package breakdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/ui/components"
	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
)

const chartHeight = 8

var groupings = []Grouping{GroupByDate, GroupByWeekday, GroupByHour}

// View renders the breakdown tab.
func (m *Model) View() string {
	snap := m.state.Snapshot()
	if !snap.HasData() {
		return m.renderEmpty()
	}

	table := m.grouping.Table(snap)[m.metric]

	sections := []string{
		m.renderHeader(),
		m.renderTable(table),
		m.renderChart(table),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Breakdown"),
		"",
		styles.HelpStyle.Render("No readings to group yet."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render(fmt.Sprintf("%s by %s", m.metric.Title(), m.grouping))

	options := make([]string, len(groupings))
	for i, g := range groupings {
		if g == m.grouping {
			options[i] = styles.SelectedOptionStyle.Render(g.String())
		} else {
			options[i] = styles.OptionStyle.Render(g.String())
		}
	}

	metricStyle := lipgloss.NewStyle().
		Foreground(styles.MetricColor(string(m.metric))).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.MetricColor(string(m.metric)))

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ",
		styles.HelpStyle.Render("[g] "), lipgloss.JoinHorizontal(lipgloss.Center, options...), "  ",
		metricStyle.Render("[m] "+m.metric.Title()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, header, "")
}

func (m *Model) renderTable(table models.Table) string {
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Summary (%s)", m.metric.Unit())),
		"",
	}
	if len(table) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No groups available"))
	} else {
		rows = append(rows, components.RenderGroupTable(table, m.grouping.String()))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderChart plots the group means. Dates are continuous so they get a line
// chart; weekdays and hours are categories and get bars.
func (m *Model) renderChart(table models.Table) string {
	chartWidth := max(m.cardWidth()-12, 30)

	rows := []string{styles.CardTitleStyle.Render("Mean per " + strings.ToLower(m.grouping.String())), ""}

	values := make([]float64, len(table))
	present := make([]bool, len(table))
	labels := make([]string, len(table))
	for i, row := range table {
		values[i], present[i] = row.Summary.Mean.Get()
		labels[i] = m.label(row.Key)
	}

	if m.grouping == GroupByDate {
		chart := components.RenderLineChart(presentOnly(values, present), chartWidth, chartHeight,
			fmt.Sprintf("Daily mean %s (%s)", strings.ToLower(m.metric.Title()), m.metric.Unit()),
			components.SeriesColor(m.metric))
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	} else {
		chart := components.RenderBarChart(values, present, labels, chartWidth, styles.MetricColor(string(m.metric)))
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}
	}

	if key, v, ok := best(table, m.metric); ok {
		rows = append(rows,
			"",
			fmt.Sprintf("  Best %s: %s (mean %.2f %s)",
				strings.ToLower(m.grouping.String()),
				lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(m.label(key)),
				v, m.metric.Unit(),
			),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) label(key string) string {
	switch m.grouping {
	case GroupByWeekday:
		if len(key) > 3 {
			return key[:3]
		}
	case GroupByHour:
		return key + ":00"
	}
	return key
}

func presentOnly(values []float64, present []bool) []float64 {
	out := make([]float64, 0, len(values))
	for i, v := range values {
		if present[i] {
			out = append(out, v)
		}
	}
	return out
}

// best returns the group with the best mean: highest for throughput, lowest
// for ping.
func best(table models.Table, metric models.Metric) (string, float64, bool) {
	var (
		key   string
		value float64
		found bool
	)
	for _, row := range table {
		v, ok := row.Summary.Mean.Get()
		if !ok {
			continue
		}
		better := v > value
		if metric == models.MetricPing {
			better = v < value
		}
		if !found || better {
			key, value, found = row.Key, v, true
		}
	}
	return key, value, found
}
