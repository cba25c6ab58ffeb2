// Package stats shapes the aggregation engine's output into chart data.
// All functions are pure computations with no side effects.
package stats

import (
	"sort"
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/wiki"
)

// Calculator computes dashboard statistics from a loaded session.
type Calculator struct {
	colors map[int]string // namespace id -> hex colour override
}

// NewCalculator creates a new Calculator instance.
// colors overrides the namespace palette; pass nil to use the defaults.
func NewCalculator(colors map[int]string) *Calculator {
	return &Calculator{colors: colors}
}

// Compute calculates the full DashboardStats for the session. Charts
// cover the session's scoped edits; the General block always describes
// the whole history. now anchors relative times and the month range.
func (c *Calculator) Compute(s *wiki.Session, now time.Time) DashboardStats {
	edits := s.ScopedEdits()
	ids := namespaceIDs(s.Namespaces, edits)

	stats := DashboardStats{
		General:    c.computeGeneral(s, now),
		Namespaces: c.computeNamespaces(s.Namespaces, ids, edits),
		Languages:  c.computeLanguages(edits),
		Tags:       c.computeTags(edits),
		Punchcard:  contribs.ToPunchcard(edits),
		Months:     c.computeMonths(ids, edits, s.Since, now),
	}

	for d, l := range contribs.GroupByDayOfWeek(edits) {
		stats.Weekdays[d] = len(l)
	}
	for h, l := range contribs.GroupByHourOfDay(edits) {
		stats.Hours[h] = len(l)
	}

	stats.Streak, stats.HasStreak = contribs.LongestStreak(edits)
	stats.SummaryCount = len(contribs.FilterByEditSummary(edits))
	stats.SummaryPercent = contribs.Percentage(stats.SummaryCount, len(edits), contribs.DefaultPrecision)

	return stats
}

func (c *Calculator) computeGeneral(s *wiki.Session, now time.Time) General {
	g := General{
		User:      s.User,
		Wiki:      s.Wiki,
		LiveEdits: len(s.Edits),
		Uploads:   s.Uploads,
		Block:     s.Block,
		Rights:    s.Rights,
	}
	if g.Wiki == "" {
		g.Wiki = s.API
	}
	if s.HasEditCount {
		g.HasTotal = true
		g.TotalEdits = s.EditCount
		g.DeletedEdits = s.EditCount - len(s.Edits)
		if g.DeletedEdits < 0 {
			g.DeletedEdits = 0
		}
	}

	first, latest, ok := contribs.Span(s.Edits)
	if ok {
		g.HasEdits = true
		g.First, g.Latest = first, latest
		g.FirstDiffURL = s.DiffURL(first.RevID)
		g.LatestDiffURL = s.DiffURL(latest.RevID)
		g.FirstAgo = now.Sub(first.Timestamp)
		g.LatestAgo = now.Sub(latest.Timestamp)
	}
	return g
}

// computeNamespaces returns one pie slice per namespace with edits,
// largest first.
func (c *Calculator) computeNamespaces(namespaces contribs.Namespaces, ids []int, edits contribs.List) []Slice {
	groups := contribs.GroupByNamespace(edits, ids, false)
	slices := make([]Slice, 0, len(groups))
	for id, l := range groups {
		slices = append(slices, Slice{
			ID:      id,
			Label:   NamespaceName(namespaces, id),
			Value:   len(l),
			Color:   c.NamespaceColor(id),
			Percent: contribs.Percentage(len(l), len(edits), contribs.DefaultPrecision),
		})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].ID < slices[j].ID
	})
	return slices
}

// computeLanguages returns one slice per inferred language, largest first.
// Percentages are relative to all code edits.
func (c *Calculator) computeLanguages(edits contribs.List) []Slice {
	groups := contribs.GroupByProgrammingLanguage(edits)
	total := 0
	for _, l := range groups {
		total += len(l)
	}
	slices := make([]Slice, 0, len(groups))
	for code, l := range groups {
		lang, _ := LanguageInfo(code)
		slices = append(slices, Slice{
			Key:     code,
			Label:   lang.Name,
			Value:   len(l),
			Color:   lang.Color,
			Percent: contribs.Percentage(len(l), total, contribs.DefaultPrecision),
		})
	}
	sortByValue(slices)
	return slices
}

// computeTags returns one slice per change tag, largest first. Percentages
// are relative to all edits, so they need not sum to 100.
func (c *Calculator) computeTags(edits contribs.List) []Slice {
	groups := contribs.GroupByTag(edits)
	slices := make([]Slice, 0, len(groups))
	for tag, l := range groups {
		slices = append(slices, Slice{
			Key:     tag,
			Label:   tag,
			Value:   len(l),
			Percent: contribs.Percentage(len(l), len(edits), contribs.DefaultPrecision),
		})
	}
	sortByValue(slices)
	for i := range slices {
		slices[i].Color = tagPalette[i%len(tagPalette)]
	}
	return slices
}

// computeMonths builds the stacked month chart. Only namespaces with at
// least one edit get a column.
func (c *Calculator) computeMonths(ids []int, edits contribs.List, since *contribs.Month, now time.Time) MonthSeries {
	active := make([]int, 0, len(ids))
	for _, id := range ids {
		if len(contribs.FilterByNamespace(edits, id)) > 0 {
			active = append(active, id)
		}
	}

	series := MonthSeries{Namespaces: active}
	for _, m := range contribs.GroupByMonthAndNamespace(edits, active, since, now) {
		row := MonthRow{Month: m.Month, PerNamespace: make([]int, len(active))}
		for i, id := range active {
			n := len(m.ByNamespace[id])
			row.PerNamespace[i] = n
			row.Total += n
		}
		series.Rows = append(series.Rows, row)
	}
	return series
}

// NamespaceMonths returns the monthly edit counts of one namespace over
// the same month range as the stacked month chart.
func NamespaceMonths(edits contribs.List, ns int, since *contribs.Month, now time.Time) []int {
	series := contribs.GroupByNamespaceAndMonth(edits, []int{ns}, since, now)[ns]
	counts := make([]int, len(series))
	for i, b := range series {
		counts[i] = len(b.Edits)
	}
	return counts
}

// TopEdited returns the most edited titles of a namespace for drill-down.
func TopEdited(edits contribs.List, ns int) ([]contribs.TitleCount, bool) {
	return contribs.TopEditedTitles(edits, ns)
}

// GeoEdits returns the edits eligible for the map: articles and files.
func GeoEdits(edits contribs.List) contribs.List {
	return contribs.FilterByNamespace(edits, 0, 6)
}

// GeoMarkers joins per-page activity with page coordinates. Pages with
// none or several coordinates are skipped. Markers are ordered by edit
// count, most edited first.
func GeoMarkers(activity []contribs.TitleActivity, coords map[string][]wiki.Coordinate) []Marker {
	markers := []Marker{}
	for _, a := range activity {
		cs := coords[a.Title]
		if len(cs) != 1 {
			continue
		}
		markers = append(markers, Marker{
			Title:    a.Title,
			Lat:      cs[0].Lat,
			Lon:      cs[0].Lon,
			Edits:    a.Count,
			SizeDiff: a.SizeDiff,
			RevID:    a.RevID,
		})
	}
	sort.SliceStable(markers, func(i, j int) bool {
		return markers[i].Edits > markers[j].Edits
	})
	return markers
}

// namespaceIDs is the sorted union of the wiki's namespaces and those
// that appear in edits.
func namespaceIDs(namespaces contribs.Namespaces, edits contribs.List) []int {
	seen := make(map[int]bool, len(namespaces))
	ids := namespaces.IDs()
	for _, id := range ids {
		seen[id] = true
	}
	for _, e := range edits {
		if !seen[e.Namespace] {
			seen[e.Namespace] = true
			ids = append(ids, e.Namespace)
		}
	}
	sort.Ints(ids)
	return ids
}

func sortByValue(slices []Slice) {
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Value != slices[j].Value {
			return slices[i].Value > slices[j].Value
		}
		return slices[i].Key < slices[j].Key
	})
}
