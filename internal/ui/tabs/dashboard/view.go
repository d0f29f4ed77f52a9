package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/services"
	"github.com/j-veylop/speed-dashboard/internal/stats"
	"github.com/j-veylop/speed-dashboard/internal/ui/components"
	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
)

const chartHeight = 8

// View renders the dashboard.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	snap := m.state.Snapshot()

	sections := []string{m.renderTitle(snap)}
	if !snap.HasData() {
		sections = append(sections, m.renderEmpty())
	} else {
		sections = append(sections,
			m.renderLastReading(snap.Latest),
			m.renderWindow("Last 24 Hours", snap.Last24h, services.Window(snap, models.TimeRange24Hours, m.now())),
			m.renderWindow("All Data", snap.Overall, snap.Readings),
			m.renderHistogram(snap),
		)
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

// renderTitle renders the title and the scale of the data.
func (m *Model) renderTitle(snap *models.Snapshot) string {
	title := styles.TitleStyle.Render("Speed Test Dashboard")

	subtitle := "No data loaded"
	if snap.HasData() {
		subtitle = fmt.Sprintf("Analyzing %s data points over %s days",
			humanize.Comma(int64(snap.Count())), humanize.Comma(int64(snap.Days)))
		if snap.Timezone != "" {
			subtitle += " (" + snap.Timezone + ")"
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderEmpty() string {
	rows := []string{
		styles.CardTitleStyle.Render("No Readings"),
		styles.HelpStyle.Render("No speed test results were found."),
	}
	if err := m.state.LastError(); err != nil {
		rows = append(rows, "", styles.ErrorTextStyle.Render(err.Error()))
	}
	rows = append(rows, "", styles.InfoTextStyle.Render("  ╰─▶ Check DATA_PATH on the Info tab, then press r"))

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderLastReading renders the most recent reading.
func (m *Model) renderLastReading(r *models.Reading) string {
	rows := []string{styles.CardTitleStyle.Render("Last Reading")}

	if r == nil {
		rows = append(rows, styles.HelpStyle.Render("No readings"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	when := fmt.Sprintf("%s (%s)", r.Time.Format("2006-01-02 15:04:05 MST"), humanize.RelTime(r.Time, m.now(), "ago", "from now"))
	status := styles.ConnectionStyle(true).Render("connected")
	if r.NoConnection() {
		status = styles.ConnectionStyle(false).Render("no connection")
	}

	rows = append(rows,
		renderRow("Timestamp", when),
		renderRow("Download", fmt.Sprintf("%.2f Mbps", r.DownloadMbps)),
		renderRow("Upload", fmt.Sprintf("%.2f Mbps", r.UploadMbps)),
		renderRow("Ping", fmt.Sprintf("%.1f ms", r.Ping)),
		renderRow("Status", status),
	)
	if r.ServerName != "" {
		rows = append(rows, renderRow("Server", serverLabel(r)))
	}
	if r.Recovered {
		rows = append(rows, "", styles.WarningTextStyle.Render("Recovered from file name, metrics unavailable"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func serverLabel(r *models.Reading) string {
	if r.ServerCountry == "" {
		return r.ServerName
	}
	return r.ServerName + ", " + r.ServerCountry
}

func renderRow(label, value string) string {
	return styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value)
}

// renderWindow renders a summary table and a chart of the selected metric.
func (m *Model) renderWindow(title string, summaries models.Summaries, readings []models.Reading) string {
	chartWidth := max(m.cardWidth()-16, 20)

	rows := []string{
		styles.CardTitleStyle.Render(title),
		components.RenderOverallTable(summaries),
		"",
	}
	if len(readings) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No readings in this window"))
	} else {
		rows = append(rows, components.RenderMetricChart(readings, m.metric, chartWidth, chartHeight))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderHistogram renders the distribution of the selected metric over all data.
func (m *Model) renderHistogram(snap *models.Snapshot) string {
	values := stats.Values(snap.Readings, m.metric)
	bins := stats.Histogram(values, histogramBins)
	summary := snap.Overall.Overall(m.metric)

	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("%s Distribution", m.metric.Title())),
		components.RenderHistogram(bins, m.metric.Unit(), m.cardWidth()-8, styles.MetricColor(string(m.metric))),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("mean ± std: %s %s   median: %s %s",
			components.FormatMeanStd(summary), m.metric.Unit(),
			components.FormatStat(summary.Median), m.metric.Unit())),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
