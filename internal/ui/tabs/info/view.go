package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
	"github.com/j-veylop/speed-dashboard/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderLoadCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and load status")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderConfigCard renders the active configuration.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	} else {
		c := m.config
		rows = append(rows,
			m.renderConfigRow("Data Path", c.DataPath),
			m.renderConfigRow("Database", c.DatabasePath),
			m.renderConfigRow("Source", string(c.Source)),
			m.renderConfigRow("Timezone", orDefault(c.Timezone, "UTC (unset)")),
			m.renderConfigRow("Recovery", c.RecoveryPolicy.String()),
			m.renderConfigRow("Persist On Load", strconv.FormatBool(c.PersistOnLoad)),
			m.renderConfigRow("Watch Data", strconv.FormatBool(c.WatchData)),
			m.renderConfigRow("Outage Alerts", strconv.FormatBool(c.NotifyOutages)),
			m.renderConfigRow("HTTP Address", c.HTTPAddr),
			m.renderConfigRow("Refresh", c.RefreshInterval.String()),
			m.renderConfigRow("Log Level", c.LogLevel),
			m.renderConfigRow("Log File", orDefault(c.LogFile, "disabled")),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderLoadCard renders how the last load treated each record.
func (m *Model) renderLoadCard() string {
	rows := []string{styles.CardTitleStyle.Render("Last Load"), ""}

	snap := m.state.Snapshot()
	if err := m.state.LastError(); err != nil {
		rows = append(rows, styles.ErrorTextStyle.Render("Error: "+err.Error()), "")
	}

	if snap == nil {
		rows = append(rows, styles.HelpStyle.Render("Nothing loaded yet"))
		return styles.CardStyle.Width(m.cardWidth()).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		)
	}

	report := snap.Report
	rows = append(rows,
		m.renderConfigRow("Built", snap.BuiltAt.Format("2006-01-02 15:04:05")),
		m.renderConfigRow("Source", string(snap.Source)),
		m.renderConfigRow("Readings", humanize.Comma(int64(snap.Count()))),
		m.renderConfigRow("Files", humanize.Comma(int64(report.Files))),
		m.renderConfigRow("Parsed", humanize.Comma(int64(report.Parsed))),
		m.renderConfigRow("Recovered", humanize.Comma(int64(report.Recovered))),
		m.renderConfigRow("Skipped", humanize.Comma(int64(report.Skipped))),
	)

	if len(report.Reasons) > 0 {
		rows = append(rows, "")
		if !m.showReasons {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("Press 's' to list %d skip reasons", len(report.Reasons))))
		} else {
			for i, reason := range report.Reasons {
				if i == maxReasons {
					rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … and %d more", len(report.Reasons)-maxReasons)))
					break
				}
				rows = append(rows, styles.WarningTextStyle.Render("  • "+reason))
			}
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Speed Dashboard"),
		"",
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Commit", version.GetCommit()),
		m.renderConfigRow("Date", version.GetDate()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
