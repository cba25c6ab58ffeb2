// Package contribs implements the aggregation engine over a contributor's
// edit history. Every function is a pure transform: inputs are never
// mutated and results are freshly allocated on each call.
package contribs

import (
	"fmt"
	"sort"
	"time"
)

// Edit is a single revision made by the inspected user.
type Edit struct {
	RevID     int64
	Namespace int
	Title     string
	Timestamp time.Time
	Comment   string
	SizeDiff  int
	Tags      []string
}

// List is the session's collection of edits. It is populated once by the
// wiki client and treated as read-only afterwards.
type List []Edit

// Namespace describes one wiki namespace as reported by siteinfo.
type Namespace struct {
	ID      int
	Name    string
	Content bool
}

type Namespaces map[int]Namespace

// IDs returns the namespace ids in ascending order.
func (n Namespaces) IDs() []int {
	ids := make([]int, 0, len(n))
	for id := range n {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Month is a UTC calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the UTC month containing t.
func MonthOf(t time.Time) Month {
	u := t.UTC()
	return Month{Year: u.Year(), Month: u.Month()}
}

// ParseMonth parses a "YYYY/MM" code.
func ParseMonth(s string) (Month, error) {
	var y, m int
	if _, err := fmt.Sscanf(s, "%d/%d", &y, &m); err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	if m < 1 || m > 12 {
		return Month{}, fmt.Errorf("parsing month %q: month out of range", s)
	}
	return Month{Year: y, Month: time.Month(m)}, nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d/%02d", m.Year, int(m.Month))
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// MonthBucket holds the edits made during one month.
type MonthBucket struct {
	Month Month
	Edits List
}

// MonthNamespaces holds one month's edits partitioned by namespace.
type MonthNamespaces struct {
	Month       Month
	ByNamespace map[int]List
}

// PunchcardCell is the number of edits made on a weekday at an hour.
type PunchcardCell struct {
	Day   int // 0=Sunday
	Hour  int
	Count int
}

// TitleCount is a page title with its number of edits.
type TitleCount struct {
	Title string
	Count int
}

// TitleActivity summarises the edits made to one page.
type TitleActivity struct {
	Title    string
	Count    int
	SizeDiff int
	// RevID is set only when the page was edited exactly once.
	RevID int64
}
