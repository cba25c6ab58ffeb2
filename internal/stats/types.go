package stats

import (
	"time"

	"github.com/nixlim/wiki-top/internal/contribs"
	"github.com/nixlim/wiki-top/internal/wiki"
)

// DashboardStats holds every chart's data for one session.
type DashboardStats struct {
	General    General
	Namespaces []Slice
	Languages  []Slice
	Tags       []Slice
	Weekdays   [7]int // 0=Sunday
	Hours      [24]int
	Punchcard  []contribs.PunchcardCell
	Months     MonthSeries

	Streak    contribs.Streak
	HasStreak bool

	// SummaryCount is the number of edits with a non-empty edit summary.
	SummaryCount   int
	SummaryPercent float64
}

// General is the headline block of the Overview.
type General struct {
	User string
	Wiki string

	LiveEdits int
	// TotalEdits includes deleted edits and is only known when
	// HasTotal is set.
	TotalEdits   int
	HasTotal     bool
	DeletedEdits int
	Uploads      int

	HasEdits      bool
	First         contribs.Edit
	Latest        contribs.Edit
	FirstDiffURL  string
	LatestDiffURL string
	FirstAgo      time.Duration
	LatestAgo     time.Duration

	Block  *wiki.Block
	Rights []wiki.RightsChange
}

// Slice is one segment of a pie chart.
type Slice struct {
	ID      int    // namespace id; zero for tags and languages
	Key     string // tag name or language code
	Label   string
	Value   int
	Color   string // hex without '#'
	Percent float64
}

// MonthSeries is the stacked month chart: one row per month, one count
// per namespace in Namespaces order.
type MonthSeries struct {
	Namespaces []int
	Rows       []MonthRow
}

type MonthRow struct {
	Month        contribs.Month
	Total        int
	PerNamespace []int
}

// Max returns the largest monthly total.
func (m MonthSeries) Max() int {
	peak := 0
	for _, r := range m.Rows {
		if r.Total > peak {
			peak = r.Total
		}
	}
	return peak
}

// Marker is a geotagged page the user edited.
type Marker struct {
	Title    string
	Lat      float64
	Lon      float64
	Edits    int
	SizeDiff int
	// RevID links the single revision when Edits is 1.
	RevID int64
}
