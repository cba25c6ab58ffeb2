package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/wiki-top/internal/stats"
)

const dateLayout = "Mon, 02 Jan 2006 15:04:05 UTC"

func (m Model) renderOverview() string {
	var sb strings.Builder
	g := m.stats.General
	now := m.now()

	sb.WriteString(panelTitleStyle.Render("General"))
	sb.WriteByte('\n')

	if g.Block != nil {
		sb.WriteString(blockStyle.Render(fmt.Sprintf("Currently blocked by %s with an expiry time of %s because %q",
			g.Block.By, g.Block.Expiry, g.Block.Reason)))
		sb.WriteByte('\n')
	}

	var rows [][2]string
	if g.HasEdits {
		rows = append(rows,
			[2]string{"First edit", fmt.Sprintf("%s (%s)  %s",
				g.First.Timestamp.UTC().Format(dateLayout),
				humanize.RelTime(g.First.Timestamp, now, "ago", "from now"),
				dimStyle.Render(g.FirstDiffURL))},
			[2]string{"Most recent edit", fmt.Sprintf("%s (%s)  %s",
				g.Latest.Timestamp.UTC().Format(dateLayout),
				humanize.RelTime(g.Latest.Timestamp, now, "ago", "from now"),
				dimStyle.Render(g.LatestDiffURL))},
		)
	} else {
		rows = append(rows, [2]string{"Edits", "none"})
	}
	rows = append(rows, [2]string{"Live edits", humanize.Comma(int64(g.LiveEdits))})
	if g.HasTotal {
		rows = append(rows,
			[2]string{"Deleted edits", humanize.Comma(int64(g.DeletedEdits))},
			[2]string{"Total edits (including deleted)", humanize.Comma(int64(g.TotalEdits))},
		)
	}
	rows = append(rows, [2]string{"Uploaded files", humanize.Comma(int64(g.Uploads))})
	if m.stats.HasStreak {
		st := m.stats.Streak
		rows = append(rows, [2]string{"Longest streak", fmt.Sprintf("%s - %s (%d days)",
			st.Start.Format(dateLayout), st.End.Format(dateLayout), st.Days())})
	}
	rows = append(rows, [2]string{"Edit summaries", fmt.Sprintf("%s%% of edits",
		humanize.FtoaWithDigits(m.stats.SummaryPercent, 2))})

	labelW := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > labelW {
			labelW = w
		}
	}
	for _, r := range rows {
		sb.WriteString("  " + labelStyle.Render(padRight(r[0]+":", labelW+1)) + " " + valueStyle.Render(r[1]))
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')
	sb.WriteString(m.renderRights())
	return sb.String()
}

func (m Model) renderRights() string {
	var sb strings.Builder
	rights := m.stats.General.Rights
	sb.WriteString(panelTitleStyle.Render(fmt.Sprintf("Rights log (%d)", len(rights))))
	sb.WriteByte('\n')

	if len(rights) == 0 {
		sb.WriteString(dimStyle.Render("  No log entries found."))
		sb.WriteByte('\n')
		return sb.String()
	}

	for _, c := range rights {
		var msg []string
		if added := c.Added(); len(added) > 0 {
			msg = append(msg, "became "+groupList(added))
		}
		if removed := c.Removed(); len(removed) > 0 {
			msg = append(msg, "removed "+groupList(removed))
		}
		line := fmt.Sprintf("  %s  %s: %s", c.Timestamp.UTC().Format(dateLayout), c.Performer, strings.Join(msg, "; "))
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// groupList joins group names, highlighting notable groups.
func groupList(groups []string) string {
	styled := make([]string, len(groups))
	for i, g := range groups {
		if c, ok := stats.GroupColor(g); ok {
			styled[i] = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color(stats.HexColor(c))).
				Render(g)
		} else {
			styled[i] = g
		}
	}
	return strings.Join(styled, ", ")
}
