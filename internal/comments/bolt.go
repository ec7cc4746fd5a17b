package comments

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"quill/internal/domain/content"
	domainerr "quill/internal/domain/errors"
)

var bComments = []byte("comments") // slug -> sub-bucket, seq(8) -> commentJSON

// BoltStore is an append-only comment log: one sub-bucket per slug, keyed by
// the bucket sequence so a cursor walks comments in submission order.
type BoltStore struct {
	db *bolt.DB
}

type BoltOptions struct {
	Path string // e.g. "./data/comments.db"
}

func OpenBolt(opt BoltOptions) (*BoltStore, error) {
	if opt.Path == "" {
		return nil, errors.New("comments: missing bolt path")
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bComments)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BoltStore) List(ctx context.Context, slug string) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !content.ValidSlug(slug) {
		return nil, fmt.Errorf("comments: slug %q: %w", slug, domainerr.ErrInvalid)
	}

	out := []Comment{}
	err := s.db.View(func(tx *bolt.Tx) error {
		parent := tx.Bucket(bComments)
		if parent == nil {
			return nil
		}
		sb := parent.Bucket([]byte(slug))
		if sb == nil {
			return nil
		}
		cur := sb.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var c Comment
			if err := json.Unmarshal(v, &c); err != nil {
				return &domainerr.CorruptionError{
					Path: fmt.Sprintf("%s:%s/%x", s.db.Path(), slug, k),
					Err:  err,
				}
			}
			out = append(out, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BoltStore) Append(ctx context.Context, c Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !content.ValidSlug(c.Slug) {
		return fmt.Errorf("comments: slug %q: %w", c.Slug, domainerr.ErrInvalid)
	}
	v, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		parent, err := tx.CreateBucketIfNotExists(bComments)
		if err != nil {
			return err
		}
		sb, err := parent.CreateBucketIfNotExists([]byte(c.Slug))
		if err != nil {
			return err
		}
		seq, err := sb.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return sb.Put(key, v)
	})
}
