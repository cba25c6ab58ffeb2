package contribs

import "time"

// GroupByMonth buckets edits by UTC month from the lower bound through the
// current month. See GroupByMonthUntil.
func GroupByMonth(edits List, from *Month) []MonthBucket {
	return GroupByMonthUntil(edits, from, time.Now())
}

// GroupByMonthUntil buckets edits by UTC month. The result is gapless and
// chronological: it starts at from (or the month of the earliest edit when
// from is nil) and ends at the month containing until, inclusive. Months
// without edits hold empty lists. Edits outside the range are dropped.
func GroupByMonthUntil(edits List, from *Month, until time.Time) []MonthBucket {
	start, ok := lowerBound(edits, from)
	if !ok {
		return []MonthBucket{}
	}

	byCode := make(map[Month]List)
	for _, e := range edits {
		m := MonthOf(e.Timestamp)
		byCode[m] = append(byCode[m], e)
	}

	months := AllMonths(start, MonthOf(until))
	buckets := make([]MonthBucket, 0, len(months))
	for _, m := range months {
		b := byCode[m]
		if b == nil {
			b = List{}
		}
		buckets = append(buckets, MonthBucket{Month: m, Edits: b})
	}
	return buckets
}

// AllMonths enumerates every month from start to end inclusive. It returns
// an empty slice when end precedes start.
func AllMonths(start, end Month) []Month {
	months := []Month{}
	for m := start; !end.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months
}

func lowerBound(edits List, from *Month) (Month, bool) {
	if from != nil {
		return *from, true
	}
	if len(edits) == 0 {
		return Month{}, false
	}
	earliest := edits[0].Timestamp
	for _, e := range edits[1:] {
		if e.Timestamp.Before(earliest) {
			earliest = e.Timestamp
		}
	}
	return MonthOf(earliest), true
}
