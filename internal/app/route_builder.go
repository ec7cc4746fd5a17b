package app

import (
	"context"
	"time"

	"quill/internal/domain/content"
	"quill/internal/domain/site"
	"quill/internal/index"
)

// RouteBuilder computes the routes listed in the sitemap.
type RouteBuilder struct {
	// LastModified reports when the file at path last changed.
	LastModified func(ctx context.Context, path string) time.Time
}

// SitemapRoutes expects items already filtered to published posts. Static
// routes carry now as their lastmod.
func (rb *RouteBuilder) SitemapRoutes(ctx context.Context, items []content.Item, now time.Time) []site.Route {
	routes := []site.Route{
		{Kind: site.RouteHome, Path: "/", LastModified: now, ChangeFreq: "daily", Priority: 1.0},
		{Kind: site.RouteAbout, Path: "/about", LastModified: now, ChangeFreq: "monthly", Priority: 0.9},
		{Kind: site.RouteBlog, Path: "/blog", LastModified: now, ChangeFreq: "daily", Priority: 0.8},
	}

	for _, it := range items {
		lm := it.ModTime
		if rb.LastModified != nil && it.SourcePath != "" {
			if t := rb.LastModified(ctx, it.SourcePath); !t.IsZero() {
				lm = t
			}
		}
		if lm.IsZero() {
			lm = now
		}
		routes = append(routes, site.Route{
			Kind:         site.RoutePost,
			Slug:         it.Slug,
			Path:         site.PostPath(it.Slug),
			LastModified: lm,
			ChangeFreq:   "weekly",
			Priority:     0.7,
		})
	}

	for _, tag := range index.TagStats(items) {
		routes = append(routes, site.Route{
			Kind:         site.RouteTag,
			Key:          tag.Name,
			Path:         site.TagPath(tag.Name),
			LastModified: now,
			ChangeFreq:   "weekly",
			Priority:     0.5,
		})
	}
	return routes
}
