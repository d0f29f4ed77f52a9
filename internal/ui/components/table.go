package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/ui/styles"
)

// MissingValue is shown for statistics that could not be computed.
const MissingValue = "n/a"

// FormatStat renders an optional statistic with two decimals.
func FormatStat(v models.Optional[float64]) string {
	if !v.Valid {
		return MissingValue
	}
	return fmt.Sprintf("%.2f", v.Value)
}

// FormatCount renders an optional count.
func FormatCount(v models.Optional[int]) string {
	if !v.Valid {
		return MissingValue
	}
	return fmt.Sprintf("%d", v.Value)
}

// FormatMeanStd renders "mean ± std", dropping the std when it is missing.
func FormatMeanStd(s models.Summary) string {
	if !s.Mean.Valid {
		return MissingValue
	}
	if !s.Std.Valid {
		return FormatStat(s.Mean)
	}
	return fmt.Sprintf("%.2f ± %.2f", s.Mean.Value, s.Std.Value)
}

// renderGrid lays out header and rows as padded columns. Cells equal to
// MissingValue are dimmed.
func renderGrid(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	headerCells := make([]string, len(header))
	for i, h := range header {
		headerCells[i] = styles.TableCellStyle.Render(pad(h, widths[i], i > 0))
	}

	lines := []string{styles.TableHeaderStyle.Render(strings.Join(headerCells, ""))}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			text := pad(cell, widths[i], i > 0)
			if cell == MissingValue {
				text = styles.MissingStyle.Render(text)
			}
			cells[i] = styles.TableCellStyle.Render(text)
		}
		lines = append(lines, strings.Join(cells, ""))
	}
	return strings.Join(lines, "\n")
}

func pad(s string, width int, right bool) string {
	gap := max(width-lipgloss.Width(s), 0)
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderOverallTable renders a single-group summary with one row per metric.
func RenderOverallTable(summaries models.Summaries) string {
	header := []string{"Metric", "Count", "Median", "Mean", "Std"}
	rows := make([][]string, 0, len(models.Metrics))
	for _, metric := range models.Metrics {
		s := summaries.Overall(metric)
		rows = append(rows, []string{
			fmt.Sprintf("%s (%s)", metric.Title(), metric.Unit()),
			FormatCount(s.Count),
			FormatStat(s.Median),
			FormatStat(s.Mean),
			FormatStat(s.Std),
		})
	}
	return renderGrid(header, rows)
}

// RenderGroupTable renders one metric's per-group summary.
func RenderGroupTable(table models.Table, keyHeader string) string {
	header := []string{keyHeader, "Count", "Median", "Mean ± Std"}
	rows := make([][]string, 0, len(table))
	for _, row := range table {
		rows = append(rows, []string{
			row.Key,
			FormatCount(row.Summary.Count),
			FormatStat(row.Summary.Median),
			FormatMeanStd(row.Summary),
		})
	}
	return renderGrid(header, rows)
}
