package comments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	bolt "go.etcd.io/bbolt"

	"quill/internal/domain/config"
	domainerr "quill/internal/domain/errors"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	fs, err := Open(config.CommentsConfig{Backend: config.BackendFile, Dir: filepath.Join(dir, "json")})
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	bs, err := Open(config.CommentsConfig{Backend: config.BackendBolt, BoltPath: filepath.Join(dir, "db", "comments.db")})
	if err != nil {
		t.Fatalf("open bolt store: %v", err)
	}
	t.Cleanup(func() {
		fs.Close()
		bs.Close()
	})
	return map[string]Store{"file": fs, "bolt": bs}
}

func mustNew(t *testing.T, slug, author string) Comment {
	t.Helper()
	c, err := New(Input{Slug: slug, Author: author, Email: "x@y.io", Content: "hi " + author}, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.List(ctx, "empty")
			if err != nil {
				t.Fatalf("List(empty): %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("List(empty) = %#v, want empty slice", got)
			}

			a, b := mustNew(t, "post", "a"), mustNew(t, "post", "b")
			for _, c := range []Comment{a, b} {
				if err := s.Append(ctx, c); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			if err := s.Append(ctx, mustNew(t, "other", "c")); err != nil {
				t.Fatal(err)
			}

			got, err = s.List(ctx, "post")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != 2 || got[0].ID != a.ID || got[1].ID != b.ID {
				t.Fatalf("List(post) = %+v", got)
			}
			if got[1].Approved {
				t.Error("round-tripped comment is approved")
			}
		})
	}
}

func TestStoreRejectsBadSlug(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.List(ctx, "../x"); !errors.Is(err, domainerr.ErrInvalid) {
				t.Errorf("List err = %v", err)
			}
			if err := s.Append(ctx, Comment{Slug: "a/b"}); !errors.Is(err, domainerr.ErrInvalid) {
				t.Errorf("Append err = %v", err)
			}
		})
	}
}

func TestStoreConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	const n = 50
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			batch := make([]Comment, n)
			for i := range batch {
				batch[i] = mustNew(t, "busy", fmt.Sprintf("u%d", i))
			}

			var wg sync.WaitGroup
			errs := make(chan error, n)
			for _, c := range batch {
				c := c
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- s.Append(ctx, c)
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("Append: %v", err)
				}
			}

			got, err := s.List(ctx, "busy")
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != n {
				t.Fatalf("stored %d comments, want %d", len(got), n)
			}
		})
	}
}

func TestFileStoreFormatAndCorruption(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := s.Append(ctx, mustNew(t, "fmt", "a")); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "fmt.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "[\n  {\n    \"id\": ") {
		t.Errorf("file not indented with two spaces:\n%s", raw)
	}
	if !strings.Contains(string(raw), `"approved": false`) {
		t.Errorf("missing approved flag:\n%s", raw)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(ctx, "broken"); !errors.Is(err, domainerr.ErrCorrupt) {
		t.Fatalf("List(broken) err = %v, want ErrCorrupt", err)
	}
	// 损坏的文件不会被覆盖
	if err := s.Append(ctx, mustNew(t, "broken", "b")); !errors.Is(err, domainerr.ErrCorrupt) {
		t.Fatalf("Append(broken) err = %v, want ErrCorrupt", err)
	}
	if raw, _ := os.ReadFile(filepath.Join(dir, "broken.json")); string(raw) != "{not json" {
		t.Errorf("corrupt file was rewritten: %q", raw)
	}
}

func TestBoltStoreCorruptValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.db")
	s, err := OpenBolt(BoltOptions{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	err = s.db.Update(func(tx *bolt.Tx) error {
		sb, err := tx.Bucket(bComments).CreateBucketIfNotExists([]byte("bad"))
		if err != nil {
			return err
		}
		return sb.Put([]byte{0, 0, 0, 0, 0, 0, 0, 1}, []byte("nope"))
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.List(context.Background(), "bad"); !errors.Is(err, domainerr.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(config.CommentsConfig{Backend: "redis"}); err == nil {
		t.Fatal("expected error")
	}
}
