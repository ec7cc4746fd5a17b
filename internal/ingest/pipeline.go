package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"quill/internal/domain/content"
	domainerr "quill/internal/domain/errors"
)

type Warning struct {
	Path string
	Msg  string
}

// Store is the file-backed content collection. Every call re-reads the
// directory; nothing is cached between calls.
type Store struct {
	Dir        string
	Extensions []string
	Log        logrus.FieldLogger
}

func NewStore(dir string, exts []string, log logrus.FieldLogger) *Store {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{Dir: dir, Extensions: exts, Log: log.WithField("component", "ingest")}
}

// ListAll returns every parsable item in directory order. Files that fail to
// parse are logged and skipped.
func (s *Store) ListAll(ctx context.Context) ([]content.Item, error) {
	items, warns, err := s.Ingest(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		s.Log.WithField("path", w.Path).Warn(w.Msg)
	}
	return items, nil
}

type result struct {
	item content.Item
	warn *Warning
	ok   bool
}

func (s *Store) Ingest(ctx context.Context) ([]content.Item, []Warning, error) {
	files, err := DiscoverSource(s.Dir, s.Extensions)
	if err != nil {
		return nil, nil, err
	}

	results := make([]result, len(files))
	jobs := make(chan int)

	workers := runtime.GOMAXPROCS(0)
	if workers > len(files) {
		workers = len(files)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				sf := files[idx]
				it, err := LoadFile(sf.Path, sf.Slug)
				if err != nil {
					results[idx] = result{warn: &Warning{Path: sf.Path, Msg: "skipped: " + err.Error()}}
					continue
				}
				results[idx] = result{item: it, ok: true}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var warns []Warning
	out := make([]content.Item, 0, len(files))
	bySlug := make(map[string]int, len(files))
	for i, r := range results {
		if r.warn != nil {
			warns = append(warns, *r.warn)
		}
		if !r.ok {
			continue
		}
		// a.md 与 a.mdx 同时存在时按扩展名优先级保留一个
		if at, dup := bySlug[r.item.Slug]; dup {
			kept := out[at]
			if extRank(filepath.Ext(files[i].Path), s.Extensions) < extRank(filepath.Ext(kept.SourcePath), s.Extensions) {
				warns = append(warns, Warning{Path: kept.SourcePath, Msg: "duplicate slug, shadowed by " + r.item.SourcePath})
				out[at] = r.item
			} else {
				warns = append(warns, Warning{Path: r.item.SourcePath, Msg: "duplicate slug, shadowed by " + kept.SourcePath})
			}
			continue
		}
		bySlug[r.item.Slug] = len(out)
		out = append(out, r.item)
	}
	return out, warns, nil
}

// GetBySlug loads one item by trying slug+ext for each configured extension.
func (s *Store) GetBySlug(ctx context.Context, slug string) (content.Item, error) {
	if err := ctx.Err(); err != nil {
		return content.Item{}, err
	}
	if !content.ValidSlug(slug) {
		return content.Item{}, domainerr.ErrNotFound
	}
	for _, ext := range s.Extensions {
		path := filepath.Join(s.Dir, slug+ext)
		it, err := LoadFile(path, slug)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return it, err
	}
	return content.Item{}, domainerr.ErrNotFound
}

// LoadFile reads and parses a single content file. Malformed front matter
// is reported as a CorruptionError.
func LoadFile(path, slug string) (content.Item, error) {
	st, err := os.Stat(path)
	if err != nil {
		return content.Item{}, err
	}
	if st.IsDir() {
		return content.Item{}, os.ErrNotExist
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return content.Item{}, err
	}

	fm, fields, body, err := ParseFrontMatter(raw)
	if err != nil {
		return content.Item{}, &domainerr.CorruptionError{Path: path, Err: err}
	}

	it := content.Item{
		Slug:        slug,
		Title:       fm.Title,
		Description: fm.Description,
		Summary:     fm.Summary,
		Excerpt:     fm.Excerpt,
		Date:        fm.Date,
		Published:   ParseTime(fm.Date),
		Tags:        fm.Tags,
		Category:    fm.Category,
		Image:       fm.Image,
		Draft:       fm.Draft,
		Body:        string(body),
		Fields:      fields,
		SourcePath:  path,
		ModTime:     st.ModTime(),
	}
	it.Normalize()
	return it, nil
}
