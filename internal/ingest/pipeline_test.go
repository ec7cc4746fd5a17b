package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	domainerr "quill/internal/domain/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestStore(t *testing.T, dir string) (*Store, *test.Hook) {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return NewStore(dir, []string{".mdx", ".md"}, log), hook
}

func TestListAllSkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.mdx":     "---\ntitle: A\ndate: 2024-01-01\n---\nbody a",
		"b.mdx":     "---\ntitle: B\ndate: 2024-06-01\n---\nbody b",
		"bad.mdx":   "---\ntitle: [unclosed\n---\nbody",
		"notes.txt": "ignored",
		".hidden.md": "---\ntitle: H\n---\n",
	})

	s, hook := newTestStore(t, dir)
	items, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	var slugs []string
	for _, it := range items {
		slugs = append(slugs, it.Slug)
	}
	// os.ReadDir 按文件名排序
	if want := []string{"a", "b"}; !reflect.DeepEqual(slugs, want) {
		t.Fatalf("slugs = %v, want %v", slugs, want)
	}

	if len(hook.AllEntries()) != 1 {
		t.Fatalf("warnings logged = %d, want 1", len(hook.AllEntries()))
	}
	if got := hook.LastEntry().Data["path"]; got != filepath.Join(dir, "bad.mdx") {
		t.Errorf("warning path = %v", got)
	}
}

func TestListAllMissingDir(t *testing.T) {
	s, _ := newTestStore(t, filepath.Join(t.TempDir(), "nope"))
	items, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestIngestDuplicateSlugPrefersFirstExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"p.md":  "---\ntitle: from md\n---\n",
		"p.mdx": "---\ntitle: from mdx\n---\n",
	})
	s, _ := newTestStore(t, dir)
	items, warns, err := s.Ingest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "from mdx" {
		t.Fatalf("items = %+v", items)
	}
	if len(warns) != 1 {
		t.Fatalf("warns = %v", warns)
	}
}

func TestIngestCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.md": "x"})
	s, _ := newTestStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := s.Ingest(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGetBySlug(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"hello.mdx": "---\ntitle: Hello\ntags: [Go, web, go]\ncategory: Tech\n---\n# Hi\n",
		"plain.md":  "no front matter here\n",
	})
	// 目录外的文件不能通过 slug 读到
	writeFiles(t, filepath.Dir(dir), map[string]string{"secret.md": "---\ntitle: S\n---\n"})

	s, _ := newTestStore(t, dir)
	ctx := context.Background()

	it, err := s.GetBySlug(ctx, "hello")
	if err != nil {
		t.Fatalf("GetBySlug(hello): %v", err)
	}
	if it.Title != "Hello" || it.Category != "Tech" {
		t.Errorf("item = %+v", it)
	}
	if want := []string{"go", "web"}; !reflect.DeepEqual(it.Tags, want) {
		t.Errorf("tags = %v, want %v", it.Tags, want)
	}

	plain, err := s.GetBySlug(ctx, "plain")
	if err != nil {
		t.Fatalf("GetBySlug(plain): %v", err)
	}
	if plain.Title != "plain" || plain.Body != "no front matter here\n" {
		t.Errorf("plain = %+v", plain)
	}

	for _, slug := range []string{"missing", "", "../secret", "a/b", ".."} {
		if _, err := s.GetBySlug(ctx, slug); !errors.Is(err, domainerr.ErrNotFound) {
			t.Errorf("GetBySlug(%q) err = %v, want ErrNotFound", slug, err)
		}
	}
}

func TestLoadFileCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"bad.md": "---\ntags: {a: [\n---\n"})

	_, err := LoadFile(filepath.Join(dir, "bad.md"), "bad")
	if !errors.Is(err, domainerr.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	var ce *domainerr.CorruptionError
	if !errors.As(err, &ce) || ce.Path != filepath.Join(dir, "bad.md") {
		t.Fatalf("err = %#v", err)
	}
}
