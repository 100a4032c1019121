package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/phaseboard/timeline/internal/calendar"
	"github.com/phaseboard/timeline/internal/service"
)

const (
	barFull  = "█"
	barEmpty = "·"
	barMore  = "›"
	barLess  = "‹"
)

// ChartOptions tunes FormatChart.
type ChartOptions struct {
	// Cursor highlights one row; -1 for none.
	Cursor int
	// HideInvisible drops rows with no day inside the month.
	HideInvisible bool
}

// FormatMonthHeader renders the day numbers and weekday labels of a grid,
// one column per day.
func FormatMonthHeader(g calendar.MonthGrid, indent int) string {
	var nums, labels strings.Builder
	for _, d := range g.Days {
		n := d.Number % 10
		style := StyleDim
		if d.Number%10 == 0 || d.Number == 1 {
			style = StyleFg
		}
		nums.WriteString(style.Render(string(rune('0' + n))))
		labels.WriteString(StyleDim.Render(d.Label[:1]))
	}
	pad := strings.Repeat(" ", indent)
	return pad + nums.String() + "\n" + pad + labels.String()
}

// FormatChart renders a month chart: titles on the left, one bar cell per
// day on the right.
func FormatChart(chart *service.Chart, opts ChartOptions) string {
	rows := chart.Rows
	if opts.HideInvisible {
		rows = chart.Visible()
	}

	titles := make([]string, len(rows))
	width := 0
	for i, r := range rows {
		titles[i] = strings.Repeat("  ", r.Depth) + r.Phase.Title
		width = max(width, lipgloss.Width(titles[i]))
	}
	width += colGap

	var b strings.Builder
	b.WriteString(Header(MonthTitle(chart.Grid.Year, chart.Grid.Month)) + "\n")
	b.WriteString(FormatMonthHeader(chart.Grid, width) + "\n")
	if len(rows) == 0 {
		b.WriteString(Dim("No phases in this month.") + "\n")
		return b.String()
	}

	for i, r := range rows {
		title := titles[i]
		if r.Depth == 0 {
			title = Bold(title)
		}
		if i == opts.Cursor {
			title = StyleCursor.Render(titles[i])
		}
		b.WriteString(title + strings.Repeat(" ", width-lipgloss.Width(titles[i])))
		b.WriteString(FormatBar(r.Bar, DepthStyle(r.Depth)))
		b.WriteString("\n")
	}
	return b.String()
}

// FormatBar draws one cell per day of the month.
func FormatBar(bar calendar.Bar, style lipgloss.Style) string {
	var b strings.Builder
	for i, on := range bar.Cells {
		switch {
		case on && i == 0 && bar.ContinuesBefore:
			b.WriteString(style.Render(barLess))
		case on && i == len(bar.Cells)-1 && bar.ContinuesAfter:
			b.WriteString(style.Render(barMore))
		case on:
			b.WriteString(style.Render(barFull))
		default:
			b.WriteString(StyleDim.Render(barEmpty))
		}
	}
	return b.String()
}

// FormatMonthGrid renders a Monday-first calendar page for the grid.
func FormatMonthGrid(g calendar.MonthGrid) string {
	var b strings.Builder
	b.WriteString(Header(MonthTitle(g.Year, g.Month)) + "\n")

	labels := make([]string, 7)
	for i := range labels {
		labels[i] = StyleDim.Render(time.Weekday((i + 1) % 7).String()[:2])
	}
	b.WriteString(strings.Join(labels, " ") + "\n")

	for _, week := range g.Weeks() {
		cells := make([]string, 7)
		for i, d := range week {
			switch {
			case d.Number == 0:
				cells[i] = "  "
			case d.Weekday == time.Saturday || d.Weekday == time.Sunday:
				cells[i] = StyleDim.Render(fmt.Sprintf("%2d", d.Number))
			default:
				cells[i] = fmt.Sprintf("%2d", d.Number)
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, " "), " ") + "\n")
	}
	return b.String()
}
