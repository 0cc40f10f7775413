package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"reelmux/internal/logging"
)

// Client-facing error texts.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidJSON      = "Invalid JSON body"
	msgMergeFailed      = "Failed to merge video and audio"
	msgExtractFailed    = "Failed to extract media"
	msgRateLimited      = "Too many requests"
)

// APIError is the JSON error body returned by every route.
type APIError struct {
	// Human readable message shown to the caller.
	Message string `json:"error"`

	// Message of the triggering error, when one exists.
	Details string `json:"details,omitempty"`

	Status int `json:"-"`

	// Logged but never sent to the caller.
	InternalMessage string `json:"-"`
}

func (err APIError) Error() string {
	return fmt.Sprintf("api error: %s", err.Message)
}

func newAPIError(status int, message string) APIError {
	return APIError{Status: status, Message: message}
}

// httpErrorHandler renders APIError values as JSON and translates echo's own
// routing errors into the same shape. Anything else becomes a bare 500.
func httpErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			logger.Debug("error after response committed",
				logging.String("path", c.Request().URL.Path),
				logging.Error(err),
			)
			return
		}

		var apiErr APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &apiErr):
		case errors.As(err, &httpErr):
			apiErr = APIError{Status: httpErr.Code}
			if httpErr.Code == http.StatusMethodNotAllowed {
				apiErr.Message = msgMethodNotAllowed
			}
		default:
			apiErr = APIError{Status: http.StatusInternalServerError, InternalMessage: err.Error()}
		}

		if apiErr.Status == 0 {
			apiErr.Status = http.StatusInternalServerError
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(apiErr.Status)
		}
		if apiErr.InternalMessage != "" {
			logging.WithContext(c.Request().Context(), logger).Error("request failure",
				logging.String("path", c.Request().URL.Path),
				logging.String("internal", apiErr.InternalMessage),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(apiErr.Status)
		} else {
			err = c.JSON(apiErr.Status, apiErr)
		}
		if err != nil {
			logger.Warn("failed to write error response", logging.Error(err))
		}
	}
}
