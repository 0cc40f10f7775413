package daemonctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"reelmux/internal/api"
)

const requestTimeout = 10 * time.Second

// ErrNotRunning is returned when no daemon answers on the configured address.
var ErrNotRunning = errors.New("reelmux daemon is not running")

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// Client queries a running daemon over its HTTP API.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient returns a Client for the daemon listening on bind. Wildcard hosts
// are dialled on loopback.
func NewClient(bind string, opts ...Option) *Client {
	c := &Client{
		baseURL: "http://" + dialAddress(bind),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Status fetches /api/status.
func (c *Client) Status(ctx context.Context) (*api.DaemonStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var status api.DaemonStatus
	if err := c.getJSON(ctx, "/api/status", "daemon status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// LogQuery selects events from /api/logs.
type LogQuery struct {
	Since uint64
	Limit int
	// Tail returns the newest Limit events and ignores Since.
	Tail bool
	// Follow long-polls until at least one event newer than Since exists.
	Follow bool
}

// Logs fetches one page of daemon log events.
func (c *Client) Logs(ctx context.Context, q LogQuery) (*api.LogStreamResponse, error) {
	if !q.Follow {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	values := url.Values{}
	if q.Since > 0 {
		values.Set("since", strconv.FormatUint(q.Since, 10))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Tail {
		values.Set("tail", "1")
	}
	if q.Follow {
		values.Set("follow", "1")
	}

	path := "/api/logs"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page api.LogStreamResponse
	if err := c.getJSON(ctx, path, "daemon logs", &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, path, op string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return ErrNotRunning
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s: %s", op, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

// LockHeld reports whether another process holds the daemon lock at path.
func LockHeld(path string) (bool, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock: %w", err)
	}
	if !ok {
		return true, nil
	}
	return false, lock.Unlock()
}

func dialAddress(bind string) string {
	bind = strings.TrimSpace(bind)
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return bind
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
