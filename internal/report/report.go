// Package report renders a session's statistics as a plain text report.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/feed"
	"github.com/nixlim/wiki-top/internal/stats"
	"github.com/nixlim/wiki-top/internal/wiki"
)

const dateLayout = "Mon, 02 Jan 2006 15:04:05 UTC"

var weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Printer writes reports to an output stream.
type Printer struct {
	out     io.Writer
	heading *color.Color
	warn    *color.Color
	strong  *color.Color
}

// NewPrinter creates a printer. Colours are emitted only when useColors
// is set, regardless of terminal detection.
func NewPrinter(w io.Writer, useColors bool) *Printer {
	p := &Printer{
		out:     w,
		heading: color.New(color.FgCyan, color.Bold),
		warn:    color.New(color.FgRed, color.Bold),
		strong:  color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.heading, p.warn, p.strong} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Input is everything a report describes.
type Input struct {
	Session *wiki.Session
	Stats   stats.DashboardStats
	Recent  []feed.FormattedEdit
	Now     time.Time
}

// Write renders the full report.
func (p *Printer) Write(in Input) error {
	s, st := in.Session, in.Stats

	p.strong.Fprintf(p.out, "%s @ %s\n", s.User, st.General.Wiki)
	if s.Since != nil {
		fmt.Fprintf(p.out, "Charts cover edits since %s\n", s.Since)
	}
	if s.FromCache {
		fmt.Fprintf(p.out, "Loaded from cache (fetched %s)\n", humanize.RelTime(s.FetchedAt, in.Now, "ago", "from now"))
	}

	sections := []struct {
		title  string
		render func() error
	}{
		{"General", func() error { return p.writeGeneral(st, in.Now) }},
		{"Rights log", func() error { return p.writeRights(st.General.Rights) }},
		{"Namespaces", func() error { return p.writeSlices("Namespace", st.Namespaces) }},
		{"Top edited", func() error { return p.writeTopEdited(s, st) }},
		{"Months", func() error { return p.writeMonths(s.Namespaces, st.Months) }},
		{"Weekdays", func() error { return p.writeWeekdays(st.Weekdays) }},
		{"Hours (UTC)", func() error { return p.writeHours(st.Hours) }},
		{"Tags", func() error { return p.writeSlices("Tag", st.Tags) }},
		{"Code", func() error { return p.writeSlices("Language", st.Languages) }},
		{"Recent edits", func() error { return p.writeRecent(in.Recent) }},
	}
	for _, sec := range sections {
		fmt.Fprintln(p.out)
		p.heading.Fprintf(p.out, "== %s ==\n", sec.title)
		if err := sec.render(); err != nil {
			return fmt.Errorf("rendering %s: %w", strings.ToLower(sec.title), err)
		}
	}
	return nil
}

func (p *Printer) writeGeneral(st stats.DashboardStats, now time.Time) error {
	g := st.General
	if g.Block != nil {
		p.warn.Fprintf(p.out, "Currently blocked by %s with an expiry time of %s because %q\n", g.Block.By, g.Block.Expiry, g.Block.Reason)
	}

	rows := [][]string{}
	if g.HasEdits {
		rows = append(rows,
			[]string{"First edit", fmt.Sprintf("%s (%s)", g.First.Timestamp.UTC().Format(dateLayout), humanize.RelTime(g.First.Timestamp, now, "ago", "from now")), g.FirstDiffURL},
			[]string{"Most recent edit", fmt.Sprintf("%s (%s)", g.Latest.Timestamp.UTC().Format(dateLayout), humanize.RelTime(g.Latest.Timestamp, now, "ago", "from now")), g.LatestDiffURL},
		)
	}
	rows = append(rows, []string{"Live edits", humanize.Comma(int64(g.LiveEdits)), ""})
	if g.HasTotal {
		rows = append(rows,
			[]string{"Deleted edits", humanize.Comma(int64(g.DeletedEdits)), ""},
			[]string{"Total edits (including deleted)", humanize.Comma(int64(g.TotalEdits)), ""},
		)
	}
	rows = append(rows, []string{"Uploaded files", humanize.Comma(int64(g.Uploads)), ""})
	if st.HasStreak {
		rows = append(rows, []string{"Longest streak", fmt.Sprintf("%s - %s (%d days)",
			st.Streak.Start.Format(dateLayout), st.Streak.End.Format(dateLayout), st.Streak.Days()), ""})
	}
	rows = append(rows, []string{"Edit summaries", fmt.Sprintf("%s%% of edits", formatPercent(st.SummaryPercent)), ""})

	return renderTable(p.out, []string{"Statistic", "Value", "Link"}, rows)
}

func (p *Printer) writeRights(changes []wiki.RightsChange) error {
	if len(changes) == 0 {
		fmt.Fprintln(p.out, "No log entries found.")
		return nil
	}
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		var msg []string
		if added := c.Added(); len(added) > 0 {
			msg = append(msg, "became "+listToText(added))
		}
		if removed := c.Removed(); len(removed) > 0 {
			msg = append(msg, "removed "+listToText(removed))
		}
		rows = append(rows, []string{c.Timestamp.UTC().Format(dateLayout), c.Performer, listToText(msg)})
	}
	return renderTable(p.out, []string{"Date", "By", "Change"}, rows)
}

func (p *Printer) writeSlices(label string, slices []stats.Slice) error {
	if len(slices) == 0 {
		fmt.Fprintln(p.out, "No edits.")
		return nil
	}
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, []string{s.Label, humanize.Comma(int64(s.Value)), formatPercent(s.Percent) + "%"})
	}
	return renderTable(p.out, []string{label, "Edits", "Share"}, rows)
}

// writeTopEdited lists the most edited titles of the busiest namespace.
func (p *Printer) writeTopEdited(s *wiki.Session, st stats.DashboardStats) error {
	if len(st.Namespaces) == 0 {
		fmt.Fprintln(p.out, "No edits.")
		return nil
	}
	ns := st.Namespaces[0]
	top, overflow := stats.TopEdited(s.ScopedEdits(), ns.ID)
	if overflow {
		fmt.Fprintf(p.out, "Top %d pages edited in %s\n", len(top), ns.Label)
	} else {
		fmt.Fprintf(p.out, "Pages edited in %s\n", ns.Label)
	}

	rows := make([][]string, 0, len(top))
	for _, tc := range top {
		rows = append(rows, []string{strconv.Itoa(tc.Count), tc.Title})
	}
	return renderTable(p.out, []string{"Edits", "Title"}, rows)
}

func (p *Printer) writeMonths(namespaces contribs.Namespaces, m stats.MonthSeries) error {
	if len(m.Rows) == 0 {
		fmt.Fprintln(p.out, "No edits.")
		return nil
	}
	header := []string{"Month", "Total"}
	for _, id := range m.Namespaces {
		header = append(header, stats.NamespaceName(namespaces, id))
	}
	rows := make([][]string, 0, len(m.Rows))
	for _, r := range m.Rows {
		row := []string{r.Month.String(), strconv.Itoa(r.Total)}
		for _, n := range r.PerNamespace {
			row = append(row, strconv.Itoa(n))
		}
		rows = append(rows, row)
	}
	return renderTable(p.out, header, rows)
}

func (p *Printer) writeWeekdays(days [7]int) error {
	rows := make([][]string, 0, 7)
	for d, n := range days {
		rows = append(rows, []string{weekdays[d], strconv.Itoa(n)})
	}
	return renderTable(p.out, []string{"Day", "Edits"}, rows)
}

func (p *Printer) writeHours(hours [24]int) error {
	rows := make([][]string, 0, 24)
	for h, n := range hours {
		rows = append(rows, []string{fmt.Sprintf("%02d:00", h), strconv.Itoa(n)})
	}
	return renderTable(p.out, []string{"Hour", "Edits"}, rows)
}

func (p *Printer) writeRecent(recent []feed.FormattedEdit) error {
	if len(recent) == 0 {
		fmt.Fprintln(p.out, "No edits.")
		return nil
	}
	for _, e := range recent {
		if e.Significant {
			p.strong.Fprintln(p.out, e.Formatted)
		} else {
			fmt.Fprintln(p.out, e.Formatted)
		}
	}
	return nil
}

// listToText joins items as "a, b and c".
func listToText(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func formatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
