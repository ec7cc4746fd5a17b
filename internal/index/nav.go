package index

import "quill/internal/domain/content"

// Neighbors resolves the chronological neighbours of slug in a newest-first
// list: prev is the next older post, next is the next newer one. Either is
// nil at the ends, and both are nil when slug is not present.
func Neighbors(sorted []content.Item, slug string) (prev, next *content.Item) {
	for i := range sorted {
		if sorted[i].Slug != slug {
			continue
		}
		if i < len(sorted)-1 {
			prev = &sorted[i+1]
		}
		if i > 0 {
			next = &sorted[i-1]
		}
		return prev, next
	}
	return nil, nil
}
