package contribs

import (
	"slices"
	"strings"
)

// Programming language codes inferred from page titles.
const (
	LangLua = "lua"
	LangJS  = "js"
	LangCSS = "css"
	LangPy  = "py"
)

// Namespace ids with special meaning for language inference.
const (
	NamespaceUser      = 2
	NamespaceMediaWiki = 8
	NamespaceModule    = 828
)

// FilterByNamespace returns the edits made in ns. A single id is an
// equality test, several ids a membership test.
func FilterByNamespace(edits List, ns ...int) List {
	result := List{}
	if len(ns) == 0 {
		return result
	}
	for _, e := range edits {
		if slices.Contains(ns, e.Namespace) {
			result = append(result, e)
		}
	}
	return result
}

// GroupByNamespace partitions edits by every id in allNamespaceIDs.
// Namespaces without edits are present only when includeEmpty is set.
func GroupByNamespace(edits List, allNamespaceIDs []int, includeEmpty bool) map[int]List {
	groups := make(map[int]List, len(allNamespaceIDs))
	for _, id := range allNamespaceIDs {
		f := FilterByNamespace(edits, id)
		if len(f) > 0 || includeEmpty {
			groups[id] = f
		}
	}
	return groups
}

// GroupByDayOfWeek partitions edits by UTC weekday, 0=Sunday.
func GroupByDayOfWeek(edits List) [7]List {
	var days [7]List
	for i := range days {
		days[i] = List{}
	}
	for _, e := range edits {
		d := int(e.Timestamp.UTC().Weekday())
		days[d] = append(days[d], e)
	}
	return days
}

// GroupByHourOfDay partitions edits by UTC hour.
func GroupByHourOfDay(edits List) [24]List {
	var hours [24]List
	for i := range hours {
		hours[i] = List{}
	}
	for _, e := range edits {
		h := e.Timestamp.UTC().Hour()
		hours[h] = append(hours[h], e)
	}
	return hours
}

// GroupByTag puts each edit into the bucket of every tag it carries.
// Untagged edits are not part of any bucket.
func GroupByTag(edits List) map[string]List {
	groups := make(map[string]List)
	for _, e := range edits {
		seen := make(map[string]bool, len(e.Tags))
		for _, tag := range e.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true
			groups[tag] = append(groups[tag], e)
		}
	}
	return groups
}

// LanguageOf infers the programming language of the page an edit touched.
func LanguageOf(e Edit) (string, bool) {
	if e.Namespace == NamespaceModule {
		return LangLua, true
	}
	if e.Namespace != NamespaceUser && e.Namespace != NamespaceMediaWiki {
		return "", false
	}
	title := strings.ToLower(e.Title)
	switch {
	case strings.HasSuffix(title, ".js"):
		return LangJS, true
	case strings.HasSuffix(title, ".css"):
		return LangCSS, true
	case e.Namespace == NamespaceUser && strings.HasSuffix(title, ".py"):
		return LangPy, true
	}
	return "", false
}

// GroupByProgrammingLanguage partitions code edits by inferred language.
func GroupByProgrammingLanguage(edits List) map[string]List {
	groups := make(map[string]List)
	for _, e := range edits {
		lang, ok := LanguageOf(e)
		if !ok {
			continue
		}
		groups[lang] = append(groups[lang], e)
	}
	return groups
}
