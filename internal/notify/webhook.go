// Package notify delivers new-comment alerts to an external webhook.
// Delivery is best effort: failures are logged and never reach the caller
// that submitted the comment.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	domainerr "quill/internal/domain/errors"
)

const NewCommentType = "new_comment"

type Event struct {
	Slug      string
	Author    string
	Content   string
	PostTitle string
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type payload struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Slug      string `json:"slug"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	PostTitle string `json:"postTitle,omitempty"`
}

// Webhook POSTs a JSON payload to URL. Discord-style and custom endpoints
// both accept it.
type Webhook struct {
	URL    string
	Client *http.Client
	Now    func() time.Time
}

func NewWebhook(url string) *Webhook {
	return &Webhook{URL: url, Client: http.DefaultClient, Now: time.Now}
}

func (w *Webhook) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(payload{
		Type:      NewCommentType,
		Timestamp: w.Now().UTC().Format(time.RFC3339),
		Slug:      ev.Slug,
		Author:    ev.Author,
		Content:   ev.Content,
		PostTitle: ev.PostTitle,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return &domainerr.NotificationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return &domainerr.NotificationError{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domainerr.NotificationError{Status: resp.StatusCode}
	}
	return nil
}

// Noop is used when no webhook URL is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Event) error { return nil }

// New returns a Webhook for url, or Noop when url is blank.
func New(url string) Notifier {
	if strings.TrimSpace(url) == "" {
		return Noop{}
	}
	return NewWebhook(strings.TrimSpace(url))
}

// Dispatcher runs notifications on their own goroutines so a slow or
// unreachable endpoint never holds up a request.
type Dispatcher struct {
	n       Notifier
	timeout time.Duration
	log     logrus.FieldLogger
	wg      sync.WaitGroup
}

func NewDispatcher(n Notifier, timeout time.Duration, log logrus.FieldLogger) *Dispatcher {
	if n == nil {
		n = Noop{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{n: n, timeout: timeout, log: log.WithField("component", "notify")}
}

// Go sends ev in the background. It never blocks and never fails.
func (d *Dispatcher) Go(ev Event) {
	if _, ok := d.n.(Noop); ok {
		d.log.Debug("webhook not configured, skipping notification")
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.WithField("panic", r).Error("notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.n.Notify(ctx, ev); err != nil {
			d.log.WithError(err).WithField("slug", ev.Slug).Warn("webhook notification failed")
			return
		}
		d.log.WithField("slug", ev.Slug).Info("webhook notification sent")
	}()
}

// Wait blocks until in-flight notifications finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
