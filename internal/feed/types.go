package feed

import "time"

// FormattedEdit holds a display-ready edit with metadata.
type FormattedEdit struct {
	RevID     int64
	Namespace int
	Title     string
	Formatted string // display-ready string
	Timestamp time.Time
	SizeDiff  int
	// Significant marks size changes large enough to be highlighted.
	Significant bool
	Tags        []string
}
