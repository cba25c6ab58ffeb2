package contribs

import "time"

const day = 24 * time.Hour

// Streak is a run of consecutive UTC days, each with at least one edit.
// Start and End are midnight-truncated.
type Streak struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of calendar days covered, inclusive.
func (s Streak) Days() int {
	return int(s.End.Sub(s.Start)/day) + 1
}

func (s Streak) span() time.Duration {
	return s.End.Sub(s.Start)
}

// LongestStreak finds the longest run of consecutive days with edits.
// Only runs spanning at least two days are reported; ties go to the
// earliest run.
func LongestStreak(edits List) (Streak, bool) {
	days := distinctDays(edits)
	if len(days) < 2 {
		return Streak{}, false
	}

	var best Streak
	found := false
	cur := Streak{Start: days[0], End: days[0]}

	closeRun := func() {
		if cur.span() == 0 {
			return
		}
		if !found || cur.span() > best.span() {
			best = cur
			found = true
		}
	}

	for _, d := range days[1:] {
		if d.Sub(cur.End) <= day {
			cur.End = d
			continue
		}
		closeRun()
		cur = Streak{Start: d, End: d}
	}
	closeRun()

	return best, found
}

// distinctDays returns the sorted, de-duplicated UTC midnights on which
// edits were made.
func distinctDays(edits List) []time.Time {
	sorted := SortByTimestamp(edits)
	var days []time.Time
	for _, e := range sorted {
		d := e.Timestamp.UTC().Truncate(day)
		if len(days) > 0 && days[len(days)-1].Equal(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}
