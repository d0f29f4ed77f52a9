// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/stats"
	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
)

// SeriesColor returns the asciigraph color used to plot a metric.
func SeriesColor(metric models.Metric) asciigraph.AnsiColor {
	switch metric {
	case models.MetricDownload:
		return asciigraph.DodgerBlue
	case models.MetricUpload:
		return asciigraph.Orange
	default:
		return asciigraph.MediumPurple
	}
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.LowerBound(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
	)
}

// RenderMetricChart plots one metric of readings in time order.
func RenderMetricChart(readings []models.Reading, metric models.Metric, width, height int) string {
	values := stats.Values(readings, metric)
	caption := fmt.Sprintf("%s (%s)", metric.Title(), metric.Unit())
	return RenderLineChart(values, width, height, caption, SeriesColor(metric))
}

// RenderBarChart creates a simple horizontal bar chart. Entries with
// present=false are labelled n/a instead of drawing a bar.
func RenderBarChart(values []float64, present []bool, labels []string, width int, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for i, v := range values {
		if isPresent(present, i) && v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	// Leave room for label and value
	barWidth := max(width-maxLabelLen-12, 10)
	barStyle := lipgloss.NewStyle().Foreground(color)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, label)

		if !isPresent(present, i) {
			lines = append(lines, paddedLabel+" │"+styles.MissingStyle.Render(" n/a"))
			continue
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := barStyle.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%s │%s %.1f", paddedLabel, bar, v))
	}

	return strings.Join(lines, "\n")
}

func isPresent(present []bool, i int) bool {
	return present == nil || (i < len(present) && present[i])
}

// RenderHistogram draws histogram bins as horizontal bars labelled by their
// lower edge.
func RenderHistogram(bins []stats.Bin, unit string, width int, color lipgloss.Color) string {
	if len(bins) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	maxCount := 0
	for _, b := range bins {
		maxCount = max(maxCount, b.Count)
	}
	if maxCount == 0 {
		maxCount = 1
	}

	labels := make([]string, len(bins))
	labelWidth := 0
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.1f", b.Lower)
		labelWidth = max(labelWidth, len(labels[i]))
	}

	barWidth := max(width-labelWidth-10, 10)
	barStyle := lipgloss.NewStyle().Foreground(color)

	lines := make([]string, 0, len(bins)+1)
	for i, b := range bins {
		barLen := b.Count * barWidth / maxCount
		bar := barStyle.Render(strings.Repeat("▇", barLen))
		lines = append(lines, fmt.Sprintf("%*s │%s %d", labelWidth, labels[i], bar, b.Count))
	}
	lines = append(lines, styles.HelpStyle.Render(fmt.Sprintf("%*s   bin lower edge (%s)", labelWidth, "", unit)))

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
