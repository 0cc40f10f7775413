package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"reelmux/internal/config"
)

const userAgent = "reelmux/0.1"

// Event identifies a notification type.
type Event string

const (
	EventDaemonStarted     Event = "daemon_started"
	EventDependencyMissing Event = "dependency_missing"
	EventMergeFailed       Event = "merge_failed"
	EventTest              Event = "test"
)

// Payload carries event-specific values keyed by name.
type Payload map[string]any

// Service publishes notification events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// HTTPDoer is the subset of *http.Client used to reach ntfy.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option customizes the ntfy service.
type Option func(*ntfyService)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(n *ntfyService) {
		if client != nil {
			n.client = client
		}
	}
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is
// configured. Events disabled in config are dropped silently.
func NewService(cfg *config.Config, opts ...Option) Service {
	if cfg == nil || cfg.Notifications.NtfyTopic == "" {
		return noopService{}
	}
	n := &ntfyService{
		endpoint: cfg.Notifications.NtfyTopic,
		client:   &http.Client{Timeout: cfg.NotificationTimeout()},
		enabled: map[Event]bool{
			EventDaemonStarted:     cfg.Notifications.DaemonStart,
			EventDependencyMissing: cfg.Notifications.DaemonStart,
			EventMergeFailed:       cfg.Notifications.MergeFailures,
			EventTest:              true,
		},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   HTTPDoer
	enabled  map[Event]bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled[event] {
		return nil
	}
	msg, ok := buildMessage(event, payload)
	if !ok {
		return fmt.Errorf("unsupported notification event %q", event)
	}
	return n.send(ctx, msg)
}

func buildMessage(event Event, payload Payload) (message, bool) {
	switch event {
	case EventDaemonStarted:
		return message{
			title: "reelmux - Started",
			body:  fmt.Sprintf("Daemon listening on %s", payload.str("bind")),
			tags:  []string{"reelmux", "daemon"},
		}, true
	case EventDependencyMissing:
		body := fmt.Sprintf("Required dependency missing: %s", payload.str("name"))
		if detail := payload.str("detail"); detail != "" {
			body += "\n" + detail
		}
		return message{
			title:    "reelmux - Dependency Missing",
			body:     body,
			tags:     []string{"reelmux", "dependency", "warning"},
			priority: "high",
		}, true
	case EventMergeFailed:
		body := fmt.Sprintf("Merge failed: %s", payload.str("error"))
		if title := payload.str("title"); title != "" {
			body = fmt.Sprintf("Merge failed for %q: %s", title, payload.str("error"))
		}
		if rid := payload.str("requestID"); rid != "" {
			body += "\nRequest: " + rid
		}
		return message{
			title:    "reelmux - Merge Failed",
			body:     body,
			tags:     []string{"reelmux", "merge", "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "reelmux - Test",
			body:     "Notification system test",
			tags:     []string{"reelmux", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) str(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case error:
		return strings.TrimSpace(v.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
