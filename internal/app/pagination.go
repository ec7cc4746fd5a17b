package app

import (
	"quill/internal/index"
	"quill/internal/render"
)

// maxVisible is how many numbered links may show before the window
// collapses into first … window … last.
const maxVisible = 5

func BuildPagination(p index.Page, pageURL func(int) string) render.Pagination {
	out := render.Pagination{Page: p.Page, TotalPages: p.TotalPages}
	if p.TotalPages <= 1 {
		return out
	}
	if p.HasPrev() {
		out.PrevURL = pageURL(p.Page - 1)
	}
	if p.HasNext() {
		out.NextURL = pageURL(p.Page + 1)
	}

	link := func(n int) render.PageLink {
		return render.PageLink{Number: n, URL: pageURL(n), Current: n == p.Page}
	}

	if p.TotalPages <= maxVisible {
		for n := 1; n <= p.TotalPages; n++ {
			out.Links = append(out.Links, link(n))
		}
		return out
	}

	lo, hi := p.Page-1, p.Page+1
	if lo < 2 {
		lo, hi = 2, 4
	}
	if hi > p.TotalPages-1 {
		lo, hi = p.TotalPages-3, p.TotalPages-1
	}

	out.Links = append(out.Links, link(1))
	if lo > 2 {
		out.Links = append(out.Links, render.PageLink{Gap: true})
	}
	for n := lo; n <= hi; n++ {
		out.Links = append(out.Links, link(n))
	}
	if hi < p.TotalPages-1 {
		out.Links = append(out.Links, render.PageLink{Gap: true})
	}
	out.Links = append(out.Links, link(p.TotalPages))
	return out
}
