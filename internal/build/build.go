package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"quill/internal/app"
	"quill/internal/domain/content"
	"quill/internal/index"
)

// Builder writes the whole site as static files under OutDir.
type Builder struct {
	Site   *app.Site
	OutDir string
	// Static is copied to <OutDir>/static.
	Static fs.FS
	Log    logrus.FieldLogger
}

type Result struct {
	Posts int
	Files int
}

// BlogPageURL is the path form of the blog pagination used by exported sites.
func BlogPageURL(page int) string {
	if page <= 1 {
		return "/blog/"
	}
	return fmt.Sprintf("/blog/page/%d/", page)
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	if b.Log == nil {
		b.Log = logrus.StandardLogger()
	}
	log := b.Log.WithField("component", "build")

	b.Site.BlogPageURL = BlogPageURL
	b.Site.DevReload = false

	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	items, err := b.Site.Published(ctx)
	if err != nil {
		return nil, err
	}

	w := &writer{root: b.OutDir}
	steps := []struct {
		name string
		fn   func(context.Context, *writer, []content.Item) error
	}{
		{"home", b.buildHome},
		{"about", b.buildAbout},
		{"blog", b.buildBlog},
		{"posts", b.buildPosts},
		{"tags", b.buildTags},
		{"categories", b.buildCategories},
		{"404", b.buildNotFound},
		{"sitemap", b.buildSitemap},
	}
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := st.fn(ctx, w, items); err != nil {
			return nil, fmt.Errorf("build %s: %w", st.name, err)
		}
	}

	if err := b.copyStaticAssets(w); err != nil {
		return nil, fmt.Errorf("copy static assets: %w", err)
	}

	log.WithFields(logrus.Fields{"posts": len(items), "files": w.count, "out": b.OutDir}).Info("export complete")
	return &Result{Posts: len(items), Files: w.count}, nil
}

func (b *Builder) buildHome(ctx context.Context, w *writer, _ []content.Item) error {
	html, err := b.Site.Home(ctx)
	if err != nil {
		return err
	}
	return w.write("index.html", html)
}

func (b *Builder) buildAbout(ctx context.Context, w *writer, _ []content.Item) error {
	html, err := b.Site.About(ctx)
	if app.IsNotFound(err) {
		// 没有 about 页面就跳过
		return nil
	}
	if err != nil {
		return err
	}
	return w.write(filepath.Join("about", "index.html"), html)
}

func (b *Builder) buildBlog(ctx context.Context, w *writer, items []content.Item) error {
	p := index.Paginate(items, 1, b.Site.Cfg.Content.PostsPerPage)
	for n := 1; n <= max(p.TotalPages, 1); n++ {
		html, err := b.Site.Blog(ctx, n)
		if err != nil {
			return err
		}
		rel := filepath.Join("blog", "index.html")
		if n > 1 {
			rel = filepath.Join("blog", "page", fmt.Sprint(n), "index.html")
		}
		if err := w.write(rel, html); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildPosts(ctx context.Context, w *writer, items []content.Item) error {
	for _, it := range items {
		html, err := b.Site.Post(ctx, it.Slug)
		if err != nil {
			return fmt.Errorf("render post(%s): %w", it.Slug, err)
		}
		if err := w.write(filepath.Join("blog", it.Slug, "index.html"), html); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildTags(ctx context.Context, w *writer, items []content.Item) error {
	html, err := b.Site.Tags(ctx)
	if err != nil {
		return err
	}
	if err := w.write(filepath.Join("tags", "index.html"), html); err != nil {
		return err
	}
	for _, st := range index.TagStats(items) {
		seg, ok := pathSegment(st.Name)
		if !ok {
			b.Log.WithField("tag", st.Name).Warn("tag cannot be used as a path, skipped")
			continue
		}
		html, err := b.Site.Tag(ctx, st.Name)
		if err != nil {
			return fmt.Errorf("render tag(%s): %w", st.Name, err)
		}
		if err := w.write(filepath.Join("tags", seg, "index.html"), html); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildCategories(ctx context.Context, w *writer, items []content.Item) error {
	html, err := b.Site.Categories(ctx)
	if err != nil {
		return err
	}
	if err := w.write(filepath.Join("categories", "index.html"), html); err != nil {
		return err
	}
	for _, st := range index.CategoryStats(items) {
		seg, ok := pathSegment(st.Name)
		if !ok {
			b.Log.WithField("category", st.Name).Warn("category cannot be used as a path, skipped")
			continue
		}
		html, err := b.Site.Category(ctx, st.Name)
		if err != nil {
			return fmt.Errorf("render category(%s): %w", st.Name, err)
		}
		if err := w.write(filepath.Join("categories", seg, "index.html"), html); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) buildNotFound(ctx context.Context, w *writer, _ []content.Item) error {
	html, err := b.Site.NotFound(ctx, "/404.html", "")
	if err != nil {
		return err
	}
	return w.write("404.html", html)
}

func (b *Builder) buildSitemap(ctx context.Context, w *writer, _ []content.Item) error {
	xml, err := b.Site.Sitemap(ctx)
	if err != nil {
		return err
	}
	if err := w.write("sitemap.xml", xml); err != nil {
		return err
	}
	return w.write("robots.txt", b.Site.Robots())
}

func (b *Builder) copyStaticAssets(w *writer) error {
	if b.Static == nil {
		return nil
	}
	err := fs.WalkDir(b.Static, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		in, err := fs.ReadFile(b.Static, path)
		if err != nil {
			return err
		}
		return w.write(filepath.Join("static", filepath.FromSlash(path)), in)
	})
	// 主题没有 static 目录就算了
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type writer struct {
	root  string
	count int
}

func (w *writer) write(rel string, data []byte) error {
	full := filepath.Join(w.root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return err
	}
	w.count++
	return nil
}

// pathSegment reports whether name can be used as a single directory name.
func pathSegment(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", false
	}
	return name, true
}
