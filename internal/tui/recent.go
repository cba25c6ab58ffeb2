package tui

import (
	"fmt"
	"strings"

	"github.com/nixlim/wiki-top/internal/feed"
)

func (m Model) renderRecent() string {
	var sb strings.Builder
	if m.recentFilter != "" {
		sb.WriteString(panelTitleStyle.Render(fmt.Sprintf("Recent edits %s (%d of latest %d)",
			m.recentFilter, len(m.recent), m.feed.Len())))
	} else {
		sb.WriteString(panelTitleStyle.Render(fmt.Sprintf("Recent edits (latest %d)", len(m.recent))))
	}
	sb.WriteByte('\n')

	if len(m.recent) == 0 {
		if m.recentFilter != "" {
			sb.WriteString(dimStyle.Render("  No matching edits among the latest. Esc shows all."))
		} else {
			sb.WriteString(dimStyle.Render("  No edits."))
		}
		return sb.String()
	}

	maxW := m.width - 4
	if maxW < 20 {
		maxW = 80
	}
	for _, e := range m.recent {
		sb.WriteString("  " + renderEditLine(e, maxW))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// renderEditLine truncates a formatted edit and emphasises large changes.
func renderEditLine(e feed.FormattedEdit, maxW int) string {
	line := truncateStr(e.Formatted, maxW)
	if !e.Significant {
		return line
	}
	if e.SizeDiff > 0 {
		return positiveStyle.Bold(true).Render(line)
	}
	return negativeStyle.Bold(true).Render(line)
}
