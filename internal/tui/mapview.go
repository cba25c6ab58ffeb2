package tui

import (
	"fmt"
	"strings"

	"github.com/nixlim/wiki-top/internal/feed"
)

func (m Model) renderMap() string {
	var sb strings.Builder
	sb.WriteString(panelTitleStyle.Render("Geotagged pages"))
	sb.WriteByte('\n')

	switch {
	case m.coords == nil:
		sb.WriteString(dimStyle.Render("  Map unavailable."))
		return sb.String()
	case m.mapState == mapFailed:
		sb.WriteString(negativeStyle.Render("  Failed to load geodata: " + m.mapErr.Error()))
		sb.WriteByte('\n')
		sb.WriteString(dimStyle.Render("  Switch views and come back to retry."))
		return sb.String()
	case m.mapState != mapLoaded:
		sb.WriteString(dimStyle.Render("  Loading geodata..."))
		return sb.String()
	case len(m.markers) == 0:
		sb.WriteString(dimStyle.Render("  No geodata: none of the edited articles or files has coordinates."))
		return sb.String()
	}

	titleW := m.width - 50
	if titleW < 20 {
		titleW = 20
	}
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %-*s %21s %7s %9s", titleW, "Title", "Coordinates", "Edits", "Bytes")))
	sb.WriteByte('\n')
	for _, mk := range m.markers {
		size, significant := feed.SizeDiffIndicator(mk.SizeDiff)
		size = fmt.Sprintf("%9s", size)
		switch {
		case significant && mk.SizeDiff > 0:
			size = positiveStyle.Bold(true).Render(size)
		case significant:
			size = negativeStyle.Bold(true).Render(size)
		}
		line := fmt.Sprintf("  %-*s %9.4f,%10.4f %7d %s",
			titleW, truncateStr(mk.Title, titleW), mk.Lat, mk.Lon, mk.Edits, size)
		if mk.RevID != 0 {
			line += "  " + dimStyle.Render(m.session.DiffURL(mk.RevID))
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
