package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"reelmux/internal/extract"
	"reelmux/internal/logging"
	"reelmux/internal/merge"
	"reelmux/internal/services"
)

const defaultBodyLimit = "1M"

// Merger runs one merge request and hands the result to deliver.
type Merger interface {
	Merge(ctx context.Context, req merge.Request, deliver merge.DeliverFunc) error
}

// Extractor resolves a page URL into medias.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*extract.Result, error)
}

// StatusFunc reports the current daemon status.
type StatusFunc func(ctx context.Context) DaemonStatus

// Options configures a Server.
type Options struct {
	Merger    Merger
	Extractor Extractor
	Status    StatusFunc
	// Logs enables GET /api/logs when set.
	Logs LogSource

	// RequestsPerSecond disables rate limiting when zero.
	RequestsPerSecond float64
	Burst             int
	// BodyLimit caps JSON request bodies, e.g. "1M".
	BodyLimit string

	Logger *slog.Logger
}

// Server is the HTTP front end for the merge and extraction services.
type Server struct {
	echo      *echo.Echo
	merger    Merger
	extractor Extractor
	status    StatusFunc
	logs      LogSource
	logger    *slog.Logger
}

// New builds the echo router with all routes and middleware registered.
func New(opts Options) (*Server, error) {
	if opts.Merger == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "init", "merger is required", nil)
	}
	logger := logging.NewComponentLogger(opts.Logger, "api")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(logger)
	e.OnAddRouteHandler = func(_ string, route echo.Route, _ echo.HandlerFunc, _ []echo.MiddlewareFunc) {
		logger.Debug("registered route", logging.String("method", route.Method), logging.String("path", route.Path))
	}

	s := &Server{
		echo:      e,
		merger:    opts.Merger,
		extractor: opts.Extractor,
		status:    opts.Status,
		logs:      opts.Logs,
		logger:    logger,
	}

	bodyLimit := opts.BodyLimit
	if bodyLimit == "" {
		bodyLimit = defaultBodyLimit
	}

	e.Use(middleware.Recover())
	e.Use(requestID)
	e.Use(s.accessLog)
	e.Use(corsHeaders)
	e.Use(middleware.BodyLimit(bodyLimit))
	if opts.RequestsPerSecond > 0 {
		e.Use(newClientLimiter(opts.RequestsPerSecond, opts.Burst).middleware)
	}

	e.Any("/api/merge", s.handleMerge)
	e.Any("/api/extract", s.handleExtract)
	e.GET("/api/status", s.handleStatus)
	e.GET("/api/logs", s.handleLogs)

	return s, nil
}

// Handler exposes the router for an http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// accessLog records one line per request and renders handler errors itself so
// the logged status is the one the client received.
func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		req := c.Request()
		status := c.Response().Status
		attrs := []logging.Attr{
			logging.String("method", req.Method),
			logging.String("path", req.URL.Path),
			logging.Int("status", status),
			logging.Int64("bytes", c.Response().Size),
			logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
			logging.String("remote", c.RealIP()),
		}
		logger := logging.WithContext(req.Context(), s.logger)
		if status >= http.StatusInternalServerError {
			logger.Warn("request failed", logging.Args(attrs...)...)
		} else {
			logger.Info("request served", logging.Args(attrs...)...)
		}
		return nil
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
// The Content-Type header is not enforced.
func decodeJSON(c echo.Context, dst any) error {
	body := c.Request().Body
	if body == nil {
		return nil
	}
	err := json.NewDecoder(body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return APIError{Status: http.StatusBadRequest, Message: msgInvalidJSON, Details: err.Error()}
}

func methodNotAllowed() error {
	return newAPIError(http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
