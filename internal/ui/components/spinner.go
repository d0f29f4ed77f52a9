package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
)

// LoadingSpinner is the progress indicator shown while readings load. The
// meter is tinted with a metric colour and an optional detail line sits
// under the label.
type LoadingSpinner struct {
	meter  spinner.Model
	label  string
	detail string
}

// NewSpinner returns a spinner for label, tinted for metric.
func NewSpinner(label string, metric models.Metric) LoadingSpinner {
	meter := spinner.New(
		spinner.WithSpinner(spinner.Meter),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.MetricColor(string(metric)))),
	)
	return LoadingSpinner{meter: meter, label: label}
}

// WithDetail returns a copy that shows detail under the label.
func (l LoadingSpinner) WithDetail(detail string) LoadingSpinner {
	l.detail = detail
	return l
}

// Init starts the animation.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.meter.Tick
}

// Update advances the animation on its own tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.meter, cmd = l.meter.Update(msg)
	return l, cmd
}

// View renders the meter, the label and the detail line.
func (l LoadingSpinner) View() string {
	line := l.meter.View() + " " + lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(l.label)
	if l.detail == "" {
		return line
	}
	return lipgloss.JoinVertical(lipgloss.Center, line, styles.HelpStyle.Render(l.detail))
}

// RenderSpinnerCentered centers the spinner in a width x height area.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.View(), width, height)
}
