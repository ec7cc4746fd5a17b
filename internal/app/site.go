package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	stripmd "github.com/writeas/go-strip-markdown"

	"quill/internal/domain/config"
	"quill/internal/domain/content"
	domainerr "quill/internal/domain/errors"
	"quill/internal/domain/site"
	"quill/internal/index"
	"quill/internal/ingest"
	"quill/internal/render"
	"quill/internal/sitemap"
)

const (
	homeRecent     = 3
	descriptionLen = 160
)

// Site assembles and renders every HTML page. It holds no content state:
// each call lists the content directory again.
type Site struct {
	Cfg   config.Config
	Posts *ingest.Store
	Pages *ingest.Store
	MD    *render.MarkdownRenderer
	Tpl   render.Renderer
	Log   logrus.FieldLogger

	// BlogPageURL links page n of the blog index. The server uses query
	// strings, the static export uses paths.
	BlogPageURL func(int) string
	DevReload   bool
	Routes      *RouteBuilder
	// Now stamps the static sitemap routes unless Cfg.Build.Now is set.
	Now         func() time.Time
}

func New(cfg config.Config, tpl render.Renderer, log logrus.FieldLogger) *Site {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Site{
		Cfg:         cfg,
		Posts:       ingest.NewStore(cfg.Content.PostsDir, cfg.Content.Extensions, log),
		Pages:       ingest.NewStore(cfg.Content.PagesDir, cfg.Content.Extensions, log),
		MD:          render.NewMarkdownRenderer(),
		Tpl:         tpl,
		Log:         log.WithField("component", "site"),
		BlogPageURL: site.BlogPagePath,
		Routes:      &RouteBuilder{LastModified: sitemap.LastModified},
		Now:         time.Now,
	}
}

// Published lists non-draft posts (all posts when drafts are included),
// newest first.
func (s *Site) Published(ctx context.Context) ([]content.Item, error) {
	items, err := s.Posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return index.Sorted(index.Published(items, s.Cfg.Content.IncludeDraft)), nil
}

func (s *Site) head(title, description, path string) render.Head {
	return render.Head{
		Site:        s.Cfg.Site,
		Title:       title,
		Description: description,
		Canonical:   s.Cfg.BaseURL() + path,
		DevReload:   s.DevReload,
	}
}

func (s *Site) Home(ctx context.Context) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > homeRecent {
		items = items[:homeRecent]
	}
	h := s.head("", s.Cfg.Site.Description, "/")
	return s.Tpl.RenderHome(ctx, render.HomePage{Head: h, Recent: items})
}

func (s *Site) About(ctx context.Context) ([]byte, error) {
	it, err := s.Pages.GetBySlug(ctx, "about")
	if err != nil {
		return nil, err
	}
	md, err := s.MD.Render([]byte(it.Body))
	if err != nil {
		return nil, fmt.Errorf("markdown render(about): %w", err)
	}
	h := s.head(it.Title, describe(it), "/about")
	return s.Tpl.RenderAbout(ctx, render.AboutPage{
		Head: h,
		HTML: template.HTML(md.HTML),
		TOC:  md.TOC,
	})
}

func (s *Site) Blog(ctx context.Context, page int) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	p := index.Paginate(items, page, s.Cfg.Content.PostsPerPage)
	h := s.head("Blog", "Read our latest blog posts", s.BlogPageURL(p.Page))
	return s.Tpl.RenderBlog(ctx, render.BlogPage{
		Head:       h,
		Items:      p.Items,
		Total:      p.Total,
		Pagination: BuildPagination(p, s.BlogPageURL),
	})
}

// Post renders one post. Drafts are only reachable when drafts are included.
func (s *Site) Post(ctx context.Context, slug string) ([]byte, error) {
	it, err := s.Posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if it.Draft && !s.Cfg.Content.IncludeDraft {
		return nil, domainerr.ErrNotFound
	}

	md, err := s.MD.Render([]byte(it.Body))
	if err != nil {
		return nil, fmt.Errorf("markdown render(%s): %w", slug, err)
	}

	all, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	prev, next := index.Neighbors(all, slug)

	h := s.head(it.Title, describe(it), site.PostPath(slug))
	h.Image = it.Image
	h.OGType = "article"
	return s.Tpl.RenderPost(ctx, render.PostPage{
		Head: h,
		Item: it,
		HTML: template.HTML(md.HTML),
		TOC:  md.TOC,
		Prev: prev,
		Next: next,
	})
}

func (s *Site) Tags(ctx context.Context) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	h := s.head("Tags", "Browse all blog posts by tags", "/tags")
	return s.Tpl.RenderTags(ctx, render.TagsPage{Head: h, Tags: index.TagStats(items)})
}

func (s *Site) Tag(ctx context.Context, tag string) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	tag = content.NormalizeTag(tag)
	h := s.head(fmt.Sprintf("Posts tagged with %q", tag), "All blog posts tagged with "+tag, site.TagPath(tag))
	return s.Tpl.RenderList(ctx, render.ListPage{
		Head:      h,
		Kind:      render.ListTag,
		Name:      tag,
		Items:     index.ItemsForTag(items, tag),
		BackURL:   "/tags",
		BackLabel: "Back to Tags",
	})
}

func (s *Site) Categories(ctx context.Context) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	h := s.head("Categories", "Browse all blog posts by categories", "/categories")
	return s.Tpl.RenderCategories(ctx, render.CategoriesPage{Head: h, Categories: index.CategoryStats(items)})
}

func (s *Site) Category(ctx context.Context, cat string) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	cat = strings.TrimSpace(cat)
	h := s.head(fmt.Sprintf("Posts in %q", cat), "All blog posts in "+cat, site.CategoryPath(cat))
	return s.Tpl.RenderList(ctx, render.ListPage{
		Head:      h,
		Kind:      render.ListCategory,
		Name:      cat,
		Items:     index.ItemsForCategory(items, cat),
		BackURL:   "/categories",
		BackLabel: "Back to Categories",
	})
}

func (s *Site) NotFound(ctx context.Context, path, message string) ([]byte, error) {
	h := s.head("Not found", "", path)
	h.Canonical = ""
	return s.Tpl.RenderNotFound(ctx, render.NotFoundPage{Head: h, Path: path, Message: message})
}

func (s *Site) Sitemap(ctx context.Context) ([]byte, error) {
	items, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	return sitemap.Build(s.Cfg.BaseURL(), s.Routes.SitemapRoutes(ctx, items, s.now()))
}

func (s *Site) now() time.Time {
	if !s.Cfg.Build.Now.IsZero() {
		return s.Cfg.Build.Now
	}
	return s.Now()
}

func (s *Site) Robots() []byte {
	return sitemap.Robots(s.Cfg.BaseURL(), s.Cfg.Site.DisallowRobots)
}

// IsNotFound reports whether err should be answered with the 404 page.
func IsNotFound(err error) bool {
	return errors.Is(err, domainerr.ErrNotFound)
}

// describe prefers the front matter description and otherwise strips the
// Markdown from the body and keeps a prefix.
func describe(it content.Item) string {
	if it.Description != "" {
		return it.Description
	}
	plain := strings.Join(strings.Fields(stripmd.Strip(it.Body)), " ")
	if utf8.RuneCountInString(plain) <= descriptionLen {
		return plain
	}
	return strings.TrimSpace(string([]rune(plain)[:descriptionLen])) + "…"
}
