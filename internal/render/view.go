package render

import (
	"html/template"

	"quill/internal/domain/config"
	"quill/internal/domain/content"
	"quill/internal/index"
)

// Head carries what every page needs for <head> and the shared layout.
type Head struct {
	Site        config.SiteConfig
	Title       string
	Description string
	Canonical   string
	Image       string
	OGType      string
	DevReload   bool
}

type PageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

type Pagination struct {
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
	Links      []PageLink
}

type HomePage struct {
	Head   Head
	Recent []content.Item
}

type AboutPage struct {
	Head Head
	HTML template.HTML
	TOC  []content.Heading
}

type BlogPage struct {
	Head       Head
	Items      []content.Item
	Total      int
	Pagination Pagination
}

type PostPage struct {
	Head Head
	Item content.Item
	HTML template.HTML
	TOC  []content.Heading
	Prev *content.Item
	Next *content.Item
}

type ListKind string

const (
	ListTag      ListKind = "tag"
	ListCategory ListKind = "category"
)

type ListPage struct {
	Head      Head
	Kind      ListKind
	Name      string
	Items     []content.Item
	BackURL   string
	BackLabel string
}

type TagsPage struct {
	Head Head
	Tags []index.Stat
}

type CategoriesPage struct {
	Head       Head
	Categories []index.Stat
}

type NotFoundPage struct {
	Head    Head
	Path    string
	Message string
}
