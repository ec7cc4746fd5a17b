package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainerr "quill/internal/domain/errors"
)

type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Content  ContentConfig  `yaml:"content"`
	Theme    ThemeConfig    `yaml:"theme"`
	Comments CommentsConfig `yaml:"comments"`
	Server   ServerConfig   `yaml:"server"`
	Build    BuildConfig    `yaml:"build"`
	Log      LogConfig      `yaml:"log"`
}

type SiteConfig struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Author         string `yaml:"author"`
	SiteURL        string `yaml:"site_url"`
	Language       string `yaml:"language"`
	DisallowRobots bool   `yaml:"disallow_robots"`
}

type ContentConfig struct {
	PostsDir     string   `yaml:"posts_dir"`
	PagesDir     string   `yaml:"pages_dir"`
	Extensions   []string `yaml:"extensions"`
	PostsPerPage int      `yaml:"posts_per_page"`
	IncludeDraft bool     `yaml:"include_draft"`
}

// ThemeConfig points at an on-disk theme. When <dir>/<name>/templates does
// not exist the embedded default theme is used.
type ThemeConfig struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
}

type CommentBackend string

const (
	BackendFile CommentBackend = "file"
	BackendBolt CommentBackend = "bolt"
)

type CommentsConfig struct {
	Backend        CommentBackend `yaml:"backend"`
	Dir            string         `yaml:"dir"`
	BoltPath       string         `yaml:"bolt_path"`
	WebhookURL     string         `yaml:"webhook_url"`
	WebhookTimeout time.Duration  `yaml:"webhook_timeout"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	Dev               bool          `yaml:"dev"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

type BuildConfig struct {
	PublicDir string    `yaml:"public_dir"`
	// Now pins the sitemap clock; zero means the wall clock at each request.
	Now       time.Time `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:       "DanDruff",
			Description: "A modern blog built with Go and MDX",
			SiteURL:     "https://acme.com",
			Language:    "en",
		},
		Content: ContentConfig{
			PostsDir:     "content/posts",
			PagesDir:     "content/pages",
			Extensions:   []string{".mdx", ".md"},
			PostsPerPage: 10,
		},
		Theme: ThemeConfig{
			Dir:  "themes",
			Name: "default",
		},
		Comments: CommentsConfig{
			Backend:        BackendFile,
			Dir:            "data/comments",
			BoltPath:       "data/comments.db",
			WebhookTimeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
		},
		Build: BuildConfig{
			PublicDir: "public",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if strings.TrimSpace(c.Content.PostsDir) == "" {
		ve.Add("content.posts_dir", "must not be empty")
	}
	if len(c.Content.Extensions) == 0 {
		ve.Add("content.extensions", "must list at least one extension")
	}
	for _, ext := range c.Content.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ve.Add("content.extensions", "must start with '.': "+ext)
		}
	}
	if c.Content.PostsPerPage <= 0 {
		ve.Add("content.posts_per_page", "must be positive")
	}

	switch c.Comments.Backend {
	case BackendFile:
		if strings.TrimSpace(c.Comments.Dir) == "" {
			ve.Add("comments.dir", "must not be empty")
		}
	case BackendBolt:
		if strings.TrimSpace(c.Comments.BoltPath) == "" {
			ve.Add("comments.bolt_path", "must not be empty")
		}
	default:
		ve.Add("comments.backend", "must be 'file' or 'bolt'")
	}
	if u := strings.TrimSpace(c.Comments.WebhookURL); u != "" && !isValidAbsURL(u) {
		ve.Add("comments.webhook_url", "must be a valid absolute URL")
	}
	if c.Comments.WebhookTimeout < 0 {
		ve.Add("comments.webhook_timeout", "must not be negative")
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		ve.Add("server.addr", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		ve.Add("log.format", "must be 'text' or 'json'")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

// BaseURL is the site URL without a trailing slash.
func (c Config) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.Site.SiteURL), "/")
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg = Default()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// 环境变量优先于文件
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("COMMENT_WEBHOOK_URL")); v != "" {
		c.Comments.WebhookURL = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("QUILL_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
}
