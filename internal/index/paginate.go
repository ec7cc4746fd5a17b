package index

import "quill/internal/domain/content"

const DefaultPageSize = 10

type Page struct {
	Items      []content.Item
	Page       int
	TotalPages int
	Total      int
	PageSize   int
}

func (p Page) HasPrev() bool { return p.Page > 1 }
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// Paginate slices items for the requested page. page is clamped into
// [1, TotalPages], or to 1 when there are no items.
func Paginate(items []content.Item, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size

	last := totalPages
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Items:      items[start:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		PageSize:   size,
	}
}
