package comments

import (
	"context"
	"fmt"

	"quill/internal/domain/config"
)

// Store persists comments per post slug, in submission order.
type Store interface {
	List(ctx context.Context, slug string) ([]Comment, error)
	Append(ctx context.Context, c Comment) error
	Close() error
}

// Open returns the backend selected in cfg.
func Open(cfg config.CommentsConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendBolt:
		return OpenBolt(BoltOptions{Path: cfg.BoltPath})
	case config.BackendFile, "":
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("comments: unknown backend %q", cfg.Backend)
	}
}
