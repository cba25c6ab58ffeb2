// Package feed formats a contributor's latest edits for the Recent view
// and the text report.
package feed

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nixlim/wiki-top/internal/contribs"
)

// SignificantSizeDiff is the absolute size change above which an edit is
// highlighted.
const SignificantSizeDiff = 500

const (
	timeLayout     = "2006-01-02 15:04"
	maxCommentLen  = 80
	maxTitleLength = 60
)

// FormatEdit converts an edit into a display-ready line:
//
//	2021-01-03 10:00  Alpha  +800  (create)
func FormatEdit(e contribs.Edit) FormattedEdit {
	indicator, significant := SizeDiffIndicator(e.SizeDiff)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s", e.Timestamp.UTC().Format(timeLayout), truncate(e.Title, maxTitleLength), indicator)
	if c := strings.TrimSpace(e.Comment); c != "" {
		fmt.Fprintf(&b, "  (%s)", truncate(c, maxCommentLen))
	}
	if len(e.Tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Tags, ", "))
	}

	return FormattedEdit{
		RevID:       e.RevID,
		Namespace:   e.Namespace,
		Title:       e.Title,
		Formatted:   b.String(),
		Timestamp:   e.Timestamp,
		SizeDiff:    e.SizeDiff,
		Significant: significant,
		Tags:        e.Tags,
	}
}

// SizeDiffIndicator renders a size change as "+N", "-N" or "0" with
// thousands separators. significant reports |N| > SignificantSizeDiff.
func SizeDiffIndicator(n int) (s string, significant bool) {
	significant = n > SignificantSizeDiff || n < -SignificantSizeDiff
	switch {
	case n > 0:
		return "+" + humanize.Comma(int64(n)), significant
	case n < 0:
		return humanize.Comma(int64(n)), significant
	}
	return "0", false
}

// Recent returns a buffer holding the latest capacity edits of a
// timestamp-ordered list.
func Recent(edits contribs.List, capacity int) *RingBuffer {
	rb := NewRingBuffer(capacity)
	for _, e := range edits {
		rb.Add(FormatEdit(e))
	}
	return rb
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
