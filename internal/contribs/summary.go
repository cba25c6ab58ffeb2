package contribs

import (
	"math"
	"sort"
)

// DefaultPrecision is the number of decimals Percentage rounds to by default.
const DefaultPrecision = 2

// FilterByEditSummary returns the edits that carry a non-empty summary.
func FilterByEditSummary(edits List) List {
	result := List{}
	for _, e := range edits {
		if e.Comment != "" {
			result = append(result, e)
		}
	}
	return result
}

// FilterByExactSummary returns the edits whose summary equals summary,
// which may be empty to select edits without one.
func FilterByExactSummary(edits List, summary string) List {
	result := List{}
	for _, e := range edits {
		if e.Comment == summary {
			result = append(result, e)
		}
	}
	return result
}

// Percentage returns numerator/denominator*100 rounded to precision
// decimals. A zero denominator yields 0.
func Percentage(numerator, denominator, precision int) float64 {
	if denominator == 0 {
		return 0
	}
	if precision < 0 {
		precision = 0
	}
	p := math.Pow(10, float64(precision))
	return math.Round(float64(numerator)/float64(denominator)*100*p) / p
}

// SortByTimestamp returns a copy of edits in ascending timestamp order.
func SortByTimestamp(edits List) List {
	sorted := make(List, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// Span returns the earliest and latest edits.
func Span(edits List) (first, last Edit, ok bool) {
	if len(edits) == 0 {
		return Edit{}, Edit{}, false
	}
	first, last = edits[0], edits[0]
	for _, e := range edits[1:] {
		if e.Timestamp.Before(first.Timestamp) {
			first = e
		}
		if e.Timestamp.After(last.Timestamp) {
			last = e
		}
	}
	return first, last, true
}
