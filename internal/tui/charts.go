package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/wiki-top/internal/stats"
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// punchcardGlyphs are ordered by increasing activity.
var punchcardGlyphs = []string{"·", "░", "▒", "▓", "█"}

func swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(stats.HexColor(hex))).Render("■")
}

// renderBar draws value/peak as a bar of at most width cells. Non-zero
// values always get at least one cell.
func renderBar(value, peak, width int, style lipgloss.Style) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	filled := value * width / peak
	if filled < 1 {
		filled = 1
	}
	return style.Render(strings.Repeat("█", filled))
}

func maxValue(slices []stats.Slice) int {
	peak := 0
	for _, s := range slices {
		if s.Value > peak {
			peak = s.Value
		}
	}
	return peak
}

func labelWidth(slices []stats.Slice) int {
	w := 0
	for _, s := range slices {
		if n := lipgloss.Width(s.Label); n > w {
			w = n
		}
	}
	return w
}

func formatPercent(f float64) string {
	return humanize.FtoaWithDigits(f, 2) + "%"
}

func (m Model) renderNamespaces() string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Namespaces"))
	sb.WriteByte('\n')

	slices := m.stats.Namespaces
	if len(slices) == 0 {
		sb.WriteString(dimStyle.Render("  No edits."))
		return sb.String()
	}

	peak := maxValue(slices)
	lw := labelWidth(slices)
	visibleH := m.height - 3
	start := 0
	if visibleH > 0 && m.nsCursor >= visibleH {
		start = m.nsCursor - visibleH + 1
	}
	for i := start; i < len(slices); i++ {
		s := slices[i]
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(stats.HexColor(s.Color)))
		line := fmt.Sprintf("%s %s %8s  %s",
			swatch(s.Color), padRight(s.Label, lw), humanize.Comma(int64(s.Value)), formatPercent(s.Percent))
		prefix := "  "
		if i == m.nsCursor {
			prefix = "> "
			line = selectedStyle.Render(stripAnsi(line))
		}
		sb.WriteString(prefix + line + "  " + renderBar(s.Value, peak, m.cfg.Display.BarWidth, color))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// formatTopEdited builds the drill-down overlay for one namespace.
func (m Model) formatTopEdited(ns stats.Slice) (title, content string) {
	top, overflow := stats.TopEdited(m.session.ScopedEdits(), ns.ID)
	if overflow {
		title = fmt.Sprintf("Top %d pages edited in %s", len(top), ns.Label)
	} else {
		title = fmt.Sprintf("%d pages edited in %s", len(top), ns.Label)
	}
	lines := make([]string, 0, len(top)+2)
	if counts := stats.NamespaceMonths(m.session.ScopedEdits(), ns.ID, m.session.Since, m.now()); len(counts) > 1 {
		lines = append(lines, "Edits per month: "+sparkline(counts), "")
	}
	for _, tc := range top {
		lines = append(lines, fmt.Sprintf("%5d - %s", tc.Count, tc.Title))
	}
	return title, strings.Join(lines, "\n")
}

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// sparkline scales counts against their peak, one glyph per count.
func sparkline(counts []int) string {
	peak := 0
	for _, n := range counts {
		if n > peak {
			peak = n
		}
	}
	out := make([]rune, len(counts))
	for i, n := range counts {
		if peak == 0 {
			out[i] = sparkGlyphs[0]
			continue
		}
		out[i] = sparkGlyphs[n*(len(sparkGlyphs)-1)/peak]
	}
	return string(out)
}

func (m Model) renderActivity() string {
	var sb strings.Builder
	width := m.cfg.Display.BarWidth

	sb.WriteString(panelTitleStyle.Render("Edits by weekday (UTC)"))
	sb.WriteByte('\n')
	maxDay := 0
	for _, n := range m.stats.Weekdays {
		if n > maxDay {
			maxDay = n
		}
	}
	for d, n := range m.stats.Weekdays {
		sb.WriteString(fmt.Sprintf("  %s %8s  %s\n", weekdayNames[d], humanize.Comma(int64(n)),
			renderBar(n, maxDay, width, weekdayBarStyles[d%2])))
	}

	sb.WriteByte('\n')
	sb.WriteString(panelTitleStyle.Render("Edits by hour (UTC)"))
	sb.WriteByte('\n')
	maxHour := 0
	for _, n := range m.stats.Hours {
		if n > maxHour {
			maxHour = n
		}
	}
	for h, n := range m.stats.Hours {
		sb.WriteString(fmt.Sprintf("  %02d:00 %8s  %s\n", h, humanize.Comma(int64(n)),
			renderBar(n, maxHour, width, weekdayBarStyles[0])))
	}
	return sb.String()
}

func (m Model) renderPunchcard() string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Punchcard (UTC)"))
	sb.WriteByte('\n')

	var grid [7][24]int
	peak := 0
	for _, c := range m.stats.Punchcard {
		grid[c.Day][c.Hour] = c.Count
		if c.Count > peak {
			peak = c.Count
		}
	}

	sb.WriteString("      ")
	for h := 0; h < 24; h++ {
		if h%3 == 0 {
			sb.WriteString(fmt.Sprintf("%-6s", hourLabel(h)))
		}
	}
	sb.WriteByte('\n')

	for d := 0; d < 7; d++ {
		sb.WriteString("  " + weekdayNames[d] + " ")
		for h := 0; h < 24; h++ {
			sb.WriteString(punchcardGlyph(grid[d][h], peak) + " ")
		}
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  busiest hour: %d edits", peak)))
	sb.WriteByte('\n')
	return sb.String()
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12am"
	case h == 12:
		return "12pm"
	}
	return fmt.Sprint(h % 12)
}

// punchcardGlyph maps a cell count to a glyph scaled against the busiest cell.
func punchcardGlyph(n, peak int) string {
	if n == 0 || peak == 0 {
		return dimStyle.Render(punchcardGlyphs[0])
	}
	levels := len(punchcardGlyphs) - 1
	i := 1 + (n*levels-1)/peak
	if i > levels {
		i = levels
	}
	return punchcardGlyphs[i]
}

func (m Model) renderMonths() string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Edits by month"))
	sb.WriteByte('\n')

	series := m.stats.Months
	if len(series.Rows) == 0 {
		sb.WriteString(dimStyle.Render("  No edits."))
		return sb.String()
	}

	legend := make([]string, 0, len(series.Namespaces))
	colors := make([]lipgloss.Style, len(series.Namespaces))
	calc := stats.NewCalculator(m.cfg.NamespaceColors)
	for i, id := range series.Namespaces {
		hex := calc.NamespaceColor(id)
		colors[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(stats.HexColor(hex)))
		legend = append(legend, swatch(hex)+" "+stats.NamespaceName(m.session.Namespaces, id))
	}
	sb.WriteString("  " + strings.Join(legend, "  "))
	sb.WriteString("\n\n")

	peak := series.Max()
	width := m.cfg.Display.BarWidth
	for _, r := range series.Rows {
		sb.WriteString(fmt.Sprintf("  %s %8s  %s\n", r.Month, humanize.Comma(int64(r.Total)),
			stackedBar(r.PerNamespace, peak, width, colors)))
	}
	return sb.String()
}

// stackedBar draws one segment per count. Segment boundaries are rounded
// from the running total so the bar length tracks the row total.
func stackedBar(counts []int, peak, width int, styles []lipgloss.Style) string {
	if peak <= 0 {
		return ""
	}
	var sb strings.Builder
	cum, drawn := 0, 0
	for i, n := range counts {
		if n == 0 {
			continue
		}
		cum += n
		end := (cum*width + peak/2) / peak
		if end <= drawn {
			end = drawn + 1
		}
		sb.WriteString(styles[i].Render(strings.Repeat("█", end-drawn)))
		drawn = end
	}
	return sb.String()
}

func (m Model) renderSlices(title string, slices []stats.Slice, empty string) string {
	return m.renderSliceList(title, slices, empty, -1)
}

func (m Model) renderTags() string {
	return m.renderSliceList("Tags", m.stats.Tags, "No tagged edits.", m.tagCursor)
}

// renderSliceList draws one bar per slice. A cursor >= 0 marks the
// selected row and keeps it in view.
func (m Model) renderSliceList(title string, slices []stats.Slice, empty string, cursor int) string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render(title))
	sb.WriteByte('\n')

	if len(slices) == 0 {
		sb.WriteString(dimStyle.Render("  " + empty))
		return sb.String()
	}

	peak := maxValue(slices)
	lw := labelWidth(slices)
	start := 0
	if visibleH := m.height - 3; cursor >= 0 && visibleH > 0 && cursor >= visibleH {
		start = cursor - visibleH + 1
	}
	for i := start; i < len(slices); i++ {
		s := slices[i]
		color := lipgloss.NewStyle().Foreground(lipgloss.Color(stats.HexColor(s.Color)))
		line := fmt.Sprintf("%s %s %8s  %-8s",
			swatch(s.Color), padRight(s.Label, lw), humanize.Comma(int64(s.Value)), formatPercent(s.Percent))
		prefix := "  "
		if i == cursor {
			prefix = "> "
			line = selectedStyle.Render(stripAnsi(line))
		}
		sb.WriteString(prefix + line + " " + renderBar(s.Value, peak, m.cfg.Display.BarWidth, color))
		sb.WriteByte('\n')
	}
	return sb.String()
}
