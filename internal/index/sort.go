package index

import (
	"sort"

	"quill/internal/domain/content"
)

// SortByDate orders items newest first. The sort is stable and any pair where
// either side lacks a parsed date compares equal, so undated items keep
// their scan position relative to their neighbours.
func SortByDate(items []content.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.HasDate() || !b.HasDate() {
			return false
		}
		return a.Published.After(b.Published)
	})
}

// Sorted returns a date-sorted copy.
func Sorted(items []content.Item) []content.Item {
	out := make([]content.Item, len(items))
	copy(out, items)
	SortByDate(out)
	return out
}

// Published drops drafts unless includeDraft is set. The input is not modified.
func Published(items []content.Item, includeDraft bool) []content.Item {
	out := make([]content.Item, 0, len(items))
	for _, it := range items {
		if it.Draft && !includeDraft {
			continue
		}
		out = append(out, it)
	}
	return out
}
