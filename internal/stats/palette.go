package stats

import (
	"strconv"
	"strings"

	"github.com/nixlim/wiki-top/internal/contribs"
)

// FallbackColor is used for namespaces without an assigned colour.
const FallbackColor = "CCC"

// namespaceColors is the conventional edit-counter palette by namespace id.
var namespaceColors = map[int]string{
	0: "FF5555", 1: "55FF55", 2: "FFFF55", 3: "FF55FF", 4: "5555FF",
	5: "55FFFF", 6: "C00000", 7: "0000C0", 8: "008800", 9: "00C0C0",
	10: "FFAFAF", 11: "808080", 12: "00C000", 13: "404040", 14: "C0C000",
	15: "C000C0",
	100: "75A3D1", 101: "A679D2", 102: "660000", 103: "000066", 104: "FAFFAF",
	105: "408345", 106: "5C8D20", 107: "E1711D", 108: "94EF2B", 109: "756A4A",
	110: "6F1DAB", 111: "301E30", 112: "5C9D96", 113: "A8CD8C", 114: "F2B3F1",
	115: "9B5828",
	120: "FF99FF", 121: "CCFFFF", 122: "CCFF00", 123: "CCFFCC",
	200: "33FF00", 201: "669900", 202: "666666", 203: "999999", 204: "FFFFCC",
	205: "FF00CC", 206: "FFFF00", 207: "FFCC00", 208: "FF0000", 209: "FF6600",
	446: "06DCFB", 447: "892EE4", 460: "99FF66", 461: "99CC66", 470: "CCCC33",
	471: "CCFF33", 480: "6699FF", 481: "66FFFF", 710: "FFCECE", 711: "FFC8F2",
	828: "F7DE00", 829: "BABA21", 866: "FFFFFF", 867: "FFCCFF",
	1198: "FF34B3", 1199: "8B1C62",
}

// Language is a programming language's display name and linguist colour.
type Language struct {
	Name  string
	Color string
}

var languages = map[string]Language{
	contribs.LangCSS: {Name: "CSS", Color: "563D7C"},
	contribs.LangJS:  {Name: "JavaScript", Color: "F1E05A"},
	contribs.LangLua: {Name: "Lua", Color: "FA1FA1"},
	contribs.LangPy:  {Name: "Python", Color: "3581BA"},
}

// groupColors highlights notable user groups in the rights log.
var groupColors = map[string]string{
	"autopatrolled":    "1E90FF",
	"rollbacker":       "556B2F",
	"filemover":        "FFA500",
	"translationadmin": "FF4500",
	"sysop":            "8B0000",
	"bureaucrat":       "9400D3",
	"checkuser":        "2F4F4F",
	"oversight":        "000080",
	"steward":          "000000",
}

// tagPalette colours tag slices, which have no conventional colour.
var tagPalette = []string{
	"4D89F9", "C6D9FD", "F7DE00", "55FF55", "FF55FF", "5555FF",
	"FFA500", "A679D2", "5C9D96", "E1711D", "94EF2B", "FF5555",
}

// LanguageInfo returns the display data for a language code.
func LanguageInfo(code string) (Language, bool) {
	l, ok := languages[code]
	return l, ok
}

// GroupColor returns the highlight colour of a user group, if it has one.
func GroupColor(group string) (string, bool) {
	c, ok := groupColors[group]
	return c, ok
}

// NamespaceName returns the display name of a namespace: the main
// namespace reads "Article", its talk namespace "Article Talk", and ids
// unknown to the wiki "ns-N".
func NamespaceName(namespaces contribs.Namespaces, id int) string {
	ns, ok := namespaces[id]
	if !ok {
		return "ns-" + strconv.Itoa(id)
	}
	switch ns.Name {
	case "":
		return "Article"
	case "Talk":
		return "Article Talk"
	}
	return strings.TrimSpace(ns.Name)
}

// NamespaceColor returns the colour of a namespace, preferring overrides.
func (c *Calculator) NamespaceColor(id int) string {
	if col, ok := c.colors[id]; ok {
		return col
	}
	if col, ok := namespaceColors[id]; ok {
		return col
	}
	return FallbackColor
}

// HexColor expands a 3-digit hex colour and prefixes '#', as expected by
// terminal styling libraries.
func HexColor(c string) string {
	if len(c) == 3 {
		c = string([]byte{c[0], c[0], c[1], c[1], c[2], c[2]})
	}
	return "#" + strings.ToUpper(c)
}
