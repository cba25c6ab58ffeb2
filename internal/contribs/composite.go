package contribs

import (
	"sort"
	"time"
)

// TopTitlesLimit caps the number of titles returned by TopEditedTitles.
const TopTitlesLimit = 30

// GroupByMonthAndNamespace buckets edits by month, then splits every month
// by namespace. All namespace ids are present in every month.
func GroupByMonthAndNamespace(edits List, allNamespaceIDs []int, from *Month, until time.Time) []MonthNamespaces {
	months := GroupByMonthUntil(edits, from, until)
	result := make([]MonthNamespaces, 0, len(months))
	for _, b := range months {
		result = append(result, MonthNamespaces{
			Month:       b.Month,
			ByNamespace: GroupByNamespace(b.Edits, allNamespaceIDs, true),
		})
	}
	return result
}

// GroupByNamespaceAndMonth is the transposed view of
// GroupByMonthAndNamespace: namespace id to its gapless monthly series.
// Every series shares the same month range.
func GroupByNamespaceAndMonth(edits List, allNamespaceIDs []int, from *Month, until time.Time) map[int][]MonthBucket {
	if from == nil {
		start, ok := lowerBound(edits, nil)
		if !ok {
			return map[int][]MonthBucket{}
		}
		from = &start
	}

	result := make(map[int][]MonthBucket, len(allNamespaceIDs))
	for id, nsEdits := range GroupByNamespace(edits, allNamespaceIDs, true) {
		result[id] = GroupByMonthUntil(nsEdits, from, until)
	}
	return result
}

// ToPunchcard counts edits per (weekday, hour). The result always holds all
// 168 cells, ordered day-major.
func ToPunchcard(edits List) []PunchcardCell {
	var counts [7][24]int
	for _, e := range edits {
		t := e.Timestamp.UTC()
		counts[t.Weekday()][t.Hour()]++
	}

	cells := make([]PunchcardCell, 0, 7*24)
	for d := range 7 {
		for h := range 24 {
			cells = append(cells, PunchcardCell{Day: d, Hour: h, Count: counts[d][h]})
		}
	}
	return cells
}

// TopEditedTitles ranks titles by number of edits, optionally restricted to
// the given namespaces. Ties keep first-occurrence order. At most
// TopTitlesLimit entries are returned; overflow reports whether more
// distinct titles existed.
func TopEditedTitles(edits List, ns ...int) (top []TitleCount, overflow bool) {
	if len(ns) > 0 {
		edits = FilterByNamespace(edits, ns...)
	}

	counts := make(map[string]int)
	var order []string
	for _, e := range edits {
		if _, seen := counts[e.Title]; !seen {
			order = append(order, e.Title)
		}
		counts[e.Title]++
	}

	top = make([]TitleCount, 0, len(order))
	for _, title := range order {
		top = append(top, TitleCount{Title: title, Count: counts[title]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})

	if len(top) > TopTitlesLimit {
		top = top[:TopTitlesLimit]
		overflow = true
	}
	return top, overflow
}

// GroupByTitle aggregates edits per page, optionally restricted to the given
// namespaces. Titles appear in first-occurrence order.
func GroupByTitle(edits List, ns ...int) []TitleActivity {
	if len(ns) > 0 {
		edits = FilterByNamespace(edits, ns...)
	}

	index := make(map[string]int)
	var result []TitleActivity
	for _, e := range edits {
		i, ok := index[e.Title]
		if !ok {
			index[e.Title] = len(result)
			result = append(result, TitleActivity{
				Title:    e.Title,
				Count:    1,
				SizeDiff: e.SizeDiff,
				RevID:    e.RevID,
			})
			continue
		}
		a := &result[i]
		a.Count++
		a.SizeDiff += e.SizeDiff
		a.RevID = 0
	}
	if result == nil {
		result = []TitleActivity{}
	}
	return result
}
