package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
)

const debounceDelay = 200 * time.Millisecond

// eventHub fans reload messages out to connected SSE clients.
type eventHub struct {
	mu     sync.Mutex
	conns  map[chan string]struct{}
	closed bool
}

func newEventHub() *eventHub {
	return &eventHub{conns: make(map[chan string]struct{})}
}

func (h *eventHub) subscribe() (chan string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan string, 8)
	h.conns[ch] = struct{}{}
	return ch, true
}

func (h *eventHub) unsubscribe(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[ch]; ok {
		delete(h.conns, ch)
		close(ch)
	}
}

func (h *eventHub) broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.conns {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *eventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.conns {
		delete(h.conns, ch)
		close(ch)
	}
}

func (s *Server) handleEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}
	ch, ok := s.events.subscribe()
	if !ok {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	defer s.events.unsubscribe(ch)

	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "data: %s\n\n", "hello")
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// startWatch watches every directory under s.watchDirs. Missing directories
// are skipped. The returned func stops the watcher.
func (s *Server) startWatch(ctx context.Context) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, root := range s.watchDirs {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.watchLoop(ctx, w)
	}()
	return func() {
		_ = w.Close()
		<-done
	}, nil
}

func (s *Server) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	s.log.Info("watching for file changes")
	debounce := time.NewTimer(time.Hour)
	debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// 新建的子目录也要监听
			if ev.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					_ = w.Add(ev.Name)
				}
			}
			debounce.Reset(debounceDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.log.WithError(err).Warn("watcher error")
		case <-debounce.C:
			s.log.Debug("content changed, reloading clients")
			s.events.broadcast("reload")
		}
	}
}
