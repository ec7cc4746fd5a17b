package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"quill/internal/app"
	"quill/internal/domain/config"
	"quill/internal/render"
)

func TestBuilderRun(t *testing.T) {
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	pages := filepath.Join(root, "pages")
	for _, d := range []string{posts, pages} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i <= 3; i++ {
		body := fmt.Sprintf("---\ntitle: Post %d\ndate: 2024-0%d-01\ntags: [go, \"a/b\"]\ncategory: Notes\n---\nbody %d\n", i, i, i)
		if err := os.WriteFile(filepath.Join(posts, fmt.Sprintf("p%d.md", i)), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(posts, "wip.md"), []byte("---\ntitle: WIP\ndraft: true\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(pages, "about.md"), []byte("---\ntitle: About\n---\nhi\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Content.PostsDir = posts
	cfg.Content.PagesDir = pages
	cfg.Content.PostsPerPage = 2
	cfg.Build.Now = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	log, _ := test.NewNullLogger()
	theme := render.DefaultTheme()
	tpl, err := render.NewTemplateRenderer(theme.Templates)
	if err != nil {
		t.Fatal(err)
	}
	site := app.New(cfg, tpl, log)
	site.Routes.LastModified = func(context.Context, string) time.Time { return time.Time{} }

	out := filepath.Join(root, "public")
	b := &Builder{Site: site, OutDir: out, Static: theme.Static, Log: log}
	res, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Posts != 3 {
		t.Errorf("posts = %d, want 3", res.Posts)
	}

	for _, rel := range []string{
		"index.html",
		"about/index.html",
		"blog/index.html",
		"blog/page/2/index.html",
		"blog/p1/index.html",
		"blog/p3/index.html",
		"tags/index.html",
		"tags/go/index.html",
		"categories/index.html",
		"categories/Notes/index.html",
		"404.html",
		"sitemap.xml",
		"robots.txt",
		"static/style.css",
		"static/site.js",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s", rel)
		}
	}
	for _, rel := range []string{"blog/wip/index.html", "blog/page/3/index.html"} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err == nil {
			t.Errorf("unexpected %s", rel)
		}
	}

	blog, err := os.ReadFile(filepath.Join(out, "blog", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(blog), `href="/blog/page/2/"`) {
		t.Error("blog index does not link to /blog/page/2/")
	}
}

func TestPathSegment(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"go", true},
		{"c++", true},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
		{" ", false},
	}
	for _, tt := range tests {
		if _, ok := pathSegment(tt.in); ok != tt.ok {
			t.Errorf("pathSegment(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
