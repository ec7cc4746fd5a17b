package site

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

type RouteKind string

const (
	RouteHome       RouteKind = "home"
	RouteAbout      RouteKind = "about"
	RouteBlog       RouteKind = "blog"
	RoutePost       RouteKind = "post"
	RouteTag        RouteKind = "tag"
	RouteTags       RouteKind = "tags"
	RouteCategory   RouteKind = "category"
	RouteCategories RouteKind = "categories"
	RouteSitemap    RouteKind = "sitemap"
	RouteRobots     RouteKind = "robots"
	RouteNotFound   RouteKind = "404"
)

type Route struct {
	Kind         RouteKind
	Slug         string
	Key          string
	Page         int
	Path         string
	LastModified time.Time
	ChangeFreq   string
	Priority     float64
}

func (r Route) String() string {
	var parts []string
	parts = append(parts, string(r.Kind))
	if r.Slug != "" {
		parts = append(parts, "slug="+r.Slug)
	}
	if r.Key != "" {
		parts = append(parts, "key="+r.Key)
	}
	if r.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", r.Page))
	}
	if r.Path != "" {
		parts = append(parts, "path="+r.Path)
	}
	return strings.Join(parts, " ")
}

func PostPath(slug string) string {
	return "/blog/" + slug
}

func TagPath(tag string) string {
	return "/tags/" + url.PathEscape(tag)
}

func CategoryPath(cat string) string {
	return "/categories/" + url.PathEscape(cat)
}

// BlogPagePath is the query-string form used by the server; page 1 is the bare index.
func BlogPagePath(page int) string {
	if page <= 1 {
		return "/blog"
	}
	return fmt.Sprintf("/blog?page=%d", page)
}
