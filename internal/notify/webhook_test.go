package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	domainerr "quill/internal/domain/errors"
)

func TestWebhookPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhook(srv.URL)
	w.Now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := w.Notify(context.Background(), Event{Slug: "hello", Author: "Ann", Content: "hi", PostTitle: "Hello"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	want := map[string]any{
		"type":      "new_comment",
		"timestamp": "2024-01-02T03:04:05Z",
		"slug":      "hello",
		"author":    "Ann",
		"content":   "hi",
		"postTitle": "Hello",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestWebhookFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Notify(context.Background(), Event{Slug: "s"})
	var ne *domainerr.NotificationError
	if !errors.As(err, &ne) || ne.Status != http.StatusInternalServerError {
		t.Fatalf("err = %v, want NotificationError(500)", err)
	}
	if !errors.Is(err, domainerr.ErrNotify) {
		t.Fatal("not ErrNotify")
	}

	// 端口已关闭
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	if err := NewWebhook(url).Notify(context.Background(), Event{}); !errors.Is(err, domainerr.ErrNotify) {
		t.Fatalf("unreachable err = %v", err)
	}
}

func TestNewNoop(t *testing.T) {
	if _, ok := New("  ").(Noop); !ok {
		t.Fatal("blank url should give Noop")
	}
	if _, ok := New("http://x.test/hook").(*Webhook); !ok {
		t.Fatal("url should give *Webhook")
	}
}

type slowNotifier struct {
	calls atomic.Int32
	err   error
}

func (s *slowNotifier) Notify(ctx context.Context, ev Event) error {
	s.calls.Add(1)
	<-ctx.Done()
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

func TestDispatcherDoesNotBlock(t *testing.T) {
	log, hook := test.NewNullLogger()
	n := &slowNotifier{}
	d := NewDispatcher(n, 50*time.Millisecond, log)

	start := time.Now()
	d.Go(Event{Slug: "a"})
	if time.Since(start) > 20*time.Millisecond {
		t.Fatal("Go blocked")
	}
	d.Wait()

	if n.calls.Load() != 1 {
		t.Fatalf("calls = %d", n.calls.Load())
	}
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("last entry = %+v, want a warning", e)
	}
}

func TestDispatcherSkipsNoop(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	d := NewDispatcher(Noop{}, 0, log)
	d.Go(Event{})
	d.Wait()
	if len(hook.AllEntries()) != 1 || hook.LastEntry().Level != logrus.DebugLevel {
		t.Fatalf("entries = %v", hook.AllEntries())
	}
}
