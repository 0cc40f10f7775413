package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"reelmux/internal/logging"
)

const (
	defaultLogLimit = 200
	// followWait bounds one long-poll so idle clients reconnect periodically.
	followWait = 25 * time.Second
)

// LogSource serves recent daemon log events.
type LogSource interface {
	Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]logging.LogEvent, uint64)
	Tail(limit int) ([]logging.LogEvent, uint64)
}

// handleLogs serves GET /api/logs?since=&limit=&tail=1&follow=1.
func (s *Server) handleLogs(c echo.Context) error {
	if s.logs == nil {
		return newAPIError(http.StatusServiceUnavailable, "Log streaming is not enabled")
	}

	query := c.QueryParams()
	since, err := parseUintParam(query.Get("since"))
	if err != nil {
		return newAPIError(http.StatusBadRequest, "Invalid since parameter")
	}
	limit := defaultLogLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return newAPIError(http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = n
	}

	var (
		events []logging.LogEvent
		next   uint64
	)
	switch {
	case isTruthy(query.Get("tail")):
		events, next = s.logs.Tail(limit)
	case isTruthy(query.Get("follow")):
		ctx, cancel := context.WithTimeout(c.Request().Context(), followWait)
		events, next = s.logs.Fetch(ctx, since, limit, true)
		cancel()
	default:
		events, next = s.logs.Fetch(c.Request().Context(), since, limit, false)
	}
	if events == nil {
		events = []logging.LogEvent{}
	}
	return c.JSON(http.StatusOK, LogStreamResponse{Events: events, Next: next})
}

func parseUintParam(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func isTruthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
