package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	domainerr "quill/internal/domain/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty title", func(c *Config) { c.Site.Title = " " }, "site.title"},
		{"relative site url", func(c *Config) { c.Site.SiteURL = "/blog" }, "site.site_url"},
		{"extension without dot", func(c *Config) { c.Content.Extensions = []string{"md"} }, "content.extensions"},
		{"zero page size", func(c *Config) { c.Content.PostsPerPage = 0 }, "content.posts_per_page"},
		{"unknown backend", func(c *Config) { c.Comments.Backend = "redis" }, "comments.backend"},
		{"bad webhook", func(c *Config) { c.Comments.WebhookURL = "ftp://x" }, "comments.webhook_url"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, domainerr.ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			var ve domainerr.ValidationError
			if !errors.As(err, &ve) || len(ve.Items) != 1 || ve.Items[0].Field != tt.field {
				t.Fatalf("items = %+v, want field %s", ve.Items, tt.field)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("COMMENT_WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("QUILL_ADDR", "")

	path := filepath.Join(t.TempDir(), "site.yaml")
	data := `
site:
  title: My Blog
  site_url: https://blog.example.com/
content:
  posts_per_page: 5
comments:
  backend: bolt
  webhook_timeout: 2s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Title != "My Blog" || cfg.Content.PostsPerPage != 5 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.BaseURL() != "https://blog.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL())
	}
	// 未设置的字段保持默认值
	if cfg.Content.PostsDir != "content/posts" || cfg.Comments.BoltPath != "data/comments.db" {
		t.Errorf("defaults lost: %+v", cfg.Content)
	}
	if cfg.Comments.Backend != BackendBolt || cfg.Comments.WebhookTimeout != 2*time.Second {
		t.Errorf("comments = %+v", cfg.Comments)
	}
	if cfg.Comments.WebhookURL != "https://hooks.example.com/x" {
		t.Errorf("env override not applied: %q", cfg.Comments.WebhookURL)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	t.Setenv("QUILL_ADDR", ":9999")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte("content:\n  posts_per_page: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, domainerr.ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}
