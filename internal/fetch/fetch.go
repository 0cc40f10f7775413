package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"reelmux/internal/logging"
	"reelmux/internal/services"
)

// HTTPDoer is the subset of *http.Client used by the downloader.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ErrTooLarge reports a body that exceeded the configured byte cap.
var ErrTooLarge = errors.New("download exceeds size limit")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	status := strings.TrimSpace(e.Status)
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "Failed to download: " + status
}

// Headers are the browser-like request headers sent with every download.
type Headers struct {
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// Options configures a Downloader.
type Options struct {
	Headers  Headers
	Timeout  time.Duration
	MaxBytes int64
	Logger   *slog.Logger
}

// Option customizes a Downloader.
type Option func(*Downloader)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(d *Downloader) {
		if client != nil {
			d.client = client
		}
	}
}

// Downloader streams remote resources to local files.
type Downloader struct {
	client   HTTPDoer
	headers  Headers
	timeout  time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// New constructs a Downloader. The default client follows redirects and
// relies on per-request timeouts.
func New(opts Options, options ...Option) *Downloader {
	d := &Downloader{
		client:   &http.Client{},
		headers:  opts.Headers,
		timeout:  opts.Timeout,
		maxBytes: opts.MaxBytes,
		logger:   logging.NewComponentLogger(opts.Logger, "fetch"),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// Download GETs rawURL and writes the body to dest, returning the number of
// bytes written. dest is created or truncated. On error a partial file may be
// left at dest; the caller owns its removal.
func (d *Downloader) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "fetch", "build request", "", err)
	}
	d.applyHeaders(req)

	logger := logging.WithContext(ctx, d.logger)
	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, d.classify(ctx, "request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, services.Wrap(services.ErrDownload, "fetch", "response", "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status})
	}
	if d.maxBytes > 0 && resp.ContentLength > d.maxBytes {
		return 0, services.Wrap(services.ErrDownload, "fetch", "response",
			fmt.Sprintf("content length %d over limit %d", resp.ContentLength, d.maxBytes), ErrTooLarge)
	}

	file, err := os.Create(dest)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "fetch", "create file", dest, err)
	}
	defer file.Close()

	var body io.Reader = resp.Body
	if d.maxBytes > 0 {
		body = io.LimitReader(resp.Body, d.maxBytes+1)
	}
	written, err := io.Copy(file, body)
	if err != nil {
		return written, d.classify(ctx, "read body", err)
	}
	if d.maxBytes > 0 && written > d.maxBytes {
		return written, services.Wrap(services.ErrDownload, "fetch", "read body",
			fmt.Sprintf("body over limit %d", d.maxBytes), ErrTooLarge)
	}
	if err := file.Close(); err != nil {
		return written, services.Wrap(services.ErrTransient, "fetch", "close file", dest, err)
	}

	logger.Debug("download complete",
		logging.String("url", rawURL),
		logging.Int64("bytes", written),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return written, nil
}

func (d *Downloader) applyHeaders(req *http.Request) {
	if ua := strings.TrimSpace(d.headers.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	req.Header.Set("Accept", "*/*")
	if lang := strings.TrimSpace(d.headers.AcceptLanguage); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	if ref := strings.TrimSpace(d.headers.Referer); ref != "" {
		req.Header.Set("Referer", ref)
	}
}

func (d *Downloader) classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "fetch", op, "download timed out", err)
	}
	return services.Wrap(services.ErrDownload, "fetch", op, "", err)
}
