package render

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"quill/internal/domain/site"
)

//go:embed theme
var embedded embed.FS

var requiredTemplates = []string{
	"home.tmpl",
	"about.tmpl",
	"blog.tmpl",
	"post.tmpl",
	"list.tmpl",
	"tags-all.tmpl",
	"categories-all.tmpl",
	"404.tmpl",
}

type TemplateRenderer struct {
	tpl *template.Template
}

// Theme is a template set plus its static assets.
type Theme struct {
	Templates fs.FS
	Static    fs.FS
	Embedded  bool
}

// DefaultTheme is the theme compiled into the binary.
func DefaultTheme() Theme {
	tpl, _ := fs.Sub(embedded, "theme/templates")
	static, _ := fs.Sub(embedded, "theme/static")
	return Theme{Templates: tpl, Static: static, Embedded: true}
}

// LoadTheme uses <themeDir>/<name> when it has a templates directory and
// falls back to the embedded theme otherwise.
func LoadTheme(themeDir, name string) (Theme, error) {
	root := filepath.Join(themeDir, name)
	info, err := os.Stat(filepath.Join(root, "templates"))
	if err != nil || !info.IsDir() {
		return DefaultTheme(), nil
	}
	th := Theme{
		Templates: os.DirFS(filepath.Join(root, "templates")),
		Static:    os.DirFS(filepath.Join(root, "static")),
	}
	if err := CheckThemeTemplates(th.Templates); err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", root, err)
	}
	return th, nil
}

func NewTemplateRenderer(templates fs.FS) (*TemplateRenderer, error) {
	tpl, err := template.New("").Funcs(templateFuncs()).ParseFS(templates, "*.tmpl")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tpl: tpl}, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"isoDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
		"nowYear": func() int {
			return time.Now().Year()
		},
		"postURL":     site.PostPath,
		"tagURL":      site.TagPath,
		"categoryURL": site.CategoryPath,
		"title": func(s string) string {
			// Caser 有状态，不能跨 goroutine 共享
			return cases.Title(language.English).String(s)
		},
		"indent": func(level int) int {
			if level < 2 {
				return 0
			}
			return level - 2
		},
		"plural": func(n int, one, many string) string {
			if n == 1 {
				return one
			}
			return many
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

func (r *TemplateRenderer) RenderHome(ctx context.Context, page HomePage) ([]byte, error) {
	return r.exec("home.tmpl", page)
}

func (r *TemplateRenderer) RenderAbout(ctx context.Context, page AboutPage) ([]byte, error) {
	return r.exec("about.tmpl", page)
}

func (r *TemplateRenderer) RenderBlog(ctx context.Context, page BlogPage) ([]byte, error) {
	return r.exec("blog.tmpl", page)
}

func (r *TemplateRenderer) RenderPost(ctx context.Context, page PostPage) ([]byte, error) {
	return r.exec("post.tmpl", page)
}

func (r *TemplateRenderer) RenderList(ctx context.Context, page ListPage) ([]byte, error) {
	return r.exec("list.tmpl", page)
}

func (r *TemplateRenderer) RenderTags(ctx context.Context, page TagsPage) ([]byte, error) {
	return r.exec("tags-all.tmpl", page)
}

func (r *TemplateRenderer) RenderCategories(ctx context.Context, page CategoriesPage) ([]byte, error) {
	return r.exec("categories-all.tmpl", page)
}

func (r *TemplateRenderer) RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error) {
	return r.exec("404.tmpl", page)
}

func (r *TemplateRenderer) exec(name string, data interface{}) ([]byte, error) {
	t := r.tpl.Lookup(name)
	if t == nil {
		return nil, fmt.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func CheckThemeTemplates(templates fs.FS) error {
	for _, name := range requiredTemplates {
		if _, err := fs.Stat(templates, name); err != nil {
			return fmt.Errorf("missing template: %s", name)
		}
	}
	return nil
}
