package comments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"quill/internal/domain/content"
	domainerr "quill/internal/domain/errors"
)

// FileStore keeps one JSON array per slug at <dir>/<slug>.json.
//
// Append holds a per-slug lock across read, append and write, and replaces
// the file by rename, so concurrent submissions within one process are not
// lost and readers never see a partial file. Writers in other processes are
// not coordinated.
type FileStore struct {
	dir   string
	locks keyedMutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("comments: missing dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(slug string) (string, error) {
	if !content.ValidSlug(slug) {
		return "", fmt.Errorf("comments: slug %q: %w", slug, domainerr.ErrInvalid)
	}
	return filepath.Join(s.dir, slug+".json"), nil
}

func (s *FileStore) List(ctx context.Context, slug string) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(slug)
	if err != nil {
		return nil, err
	}
	return readFile(path)
}

func (s *FileStore) Append(ctx context.Context, c Comment) error {
	path, err := s.path(c.Slug)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(c.Slug)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	list, err := readFile(path)
	if err != nil {
		return err
	}
	list = append(list, c)

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

func (s *FileStore) Close() error { return nil }

func readFile(path string) ([]Comment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Comment{}, nil
		}
		return nil, err
	}
	list := []Comment{}
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, &domainerr.CorruptionError{Path: path, Err: err}
	}
	if list == nil {
		list = []Comment{}
	}
	return list, nil
}

// 先写临时文件再 rename，读者看不到写了一半的文件
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until key is free and returns its unlock func. Entries are
// dropped once nobody holds or waits for them.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*keyedEntry)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
