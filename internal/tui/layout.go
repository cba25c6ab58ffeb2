package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("69"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("63")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	blockStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	weekdayBarStyles = [2]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("#4D89F9")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#C6D9FD")),
	}

	detailOverlayStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("69")).
				Padding(1, 2)
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func (m Model) renderHeader() string {
	title := " wiki-top"
	viewLabel := " " + m.session.User
	if m.stats.General.Wiki != "" {
		viewLabel += "@" + m.stats.General.Wiki
	}

	indicators := m.headerIndicators()
	help := m.headerHelp()

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(viewLabel) - lipgloss.Width(indicators) - lipgloss.Width(help)
	if padding < 0 {
		padding = 0
	}

	return headerStyle.Width(m.width).Render(title + viewLabel + indicators + strings.Repeat(" ", padding) + help)
}

func (m Model) headerHelp() string {
	if m.detailOverlay {
		return "Esc:Close  ↑/↓:Scroll  q:Quit "
	}
	switch {
	case m.view == ViewNamespaces:
		return "↑/↓:Select  Enter:Top pages  r:Recent  Tab:Next  q:Quit "
	case m.view == ViewTags:
		return "↑/↓:Select  Enter:Recent  Tab:Next  q:Quit "
	case m.view == ViewRecent && m.recentFilter != "":
		return "Esc:All edits  ↑/↓:Scroll  Tab:Next  q:Quit "
	}
	return "Tab/Shift+Tab:Views  1-9:Jump  ↑/↓:Scroll  q:Quit "
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := ViewState(0); v < viewCount; v++ {
		label := string(rune('1'+v)) + " " + v.String()
		if v == m.view {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) overlayDetail(base string) string {
	overlayW := m.width * 70 / 100
	if overlayW < 40 {
		overlayW = 40
	}
	if m.width > 0 && overlayW > m.width-4 {
		overlayW = m.width - 4
	}
	overlayH := m.height * 70 / 100
	if overlayH < 10 {
		overlayH = 10
	}
	if m.height > 0 && overlayH > m.height-4 {
		overlayH = m.height - 4
	}

	contentW := overlayW - 6
	if contentW < 10 {
		contentW = 10
	}
	contentH := overlayH - 6
	if contentH < 3 {
		contentH = 3
	}

	var wrapped []string
	for _, line := range strings.Split(m.detailContent, "\n") {
		wrapped = append(wrapped, wrapLine(line, contentW)...)
	}

	startIdx := m.detailScrollPos
	if startIdx > len(wrapped)-contentH {
		startIdx = len(wrapped) - contentH
	}
	if startIdx < 0 {
		startIdx = 0
	}
	endIdx := startIdx + contentH
	if endIdx > len(wrapped) {
		endIdx = len(wrapped)
	}

	body := strings.Join(wrapped[startIdx:endIdx], "\n")

	title := panelTitleStyle.Render(m.detailTitle)
	footer := dimStyle.Render("Esc/Enter: Close")
	if len(wrapped) > contentH {
		footer += dimStyle.Render("  Up/Down: Scroll")
	}

	dialog := detailOverlayStyle.
		Width(overlayW - 2).
		Render(title + "\n\n" + body + "\n\n" + footer)

	return placeOverlay(dialog, base)
}

// wrapLine breaks a line at spaces so no piece exceeds w runes.
func wrapLine(line string, w int) []string {
	r := []rune(line)
	if len(r) <= w {
		return []string{line}
	}
	var out []string
	for len(r) > w {
		cutAt := w
		for i := w; i > 0; i-- {
			if r[i] == ' ' {
				cutAt = i
				break
			}
		}
		out = append(out, string(r[:cutAt]))
		r = r[cutAt:]
		if len(r) > 0 && r[0] == ' ' {
			r = r[1:]
		}
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

func placeOverlay(fg, bg string) string {
	return lipgloss.Place(
		lipgloss.Width(bg),
		lipgloss.Height(bg),
		lipgloss.Center,
		lipgloss.Center,
		fg,
		lipgloss.WithWhitespaceChars(" "),
	)
}

// truncateStr shortens s to maxLen display columns with an ellipsis.
func truncateStr(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads s with spaces to w display columns.
func padRight(s string, w int) string {
	n := lipgloss.Width(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}
