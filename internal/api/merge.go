package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"reelmux/internal/logging"
	"reelmux/internal/merge"
	"reelmux/internal/services"
)

func (s *Server) handleMerge(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
	default:
		return methodNotAllowed()
	}

	var req merge.Request
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	err := s.merger.Merge(ctx, req, func(_ context.Context, out merge.Output) error {
		h := c.Response().Header()
		h.Set(echo.HeaderContentType, merge.ContentType)
		h.Set(echo.HeaderContentDisposition, `attachment; filename="`+out.Filename+`"`)
		h.Set(echo.HeaderContentLength, strconv.FormatInt(out.Size, 10))
		c.Response().WriteHeader(http.StatusOK)
		_, err := io.Copy(c.Response(), out.File)
		return err
	})
	if err == nil {
		return nil
	}

	logger := logging.WithContext(ctx, s.logger)
	if c.Response().Committed {
		logger.Warn("merge stream interrupted", logging.Error(err))
		return nil
	}
	if services.IsClientError(err) {
		msg := merge.PublicMessage(err)
		if msg == "" {
			msg = err.Error()
		}
		return newAPIError(http.StatusBadRequest, msg)
	}
	logger.Error("merge failed",
		logging.String("kind", services.Kind(err)),
		logging.Error(err),
	)
	return APIError{
		Status:  http.StatusInternalServerError,
		Message: msgMergeFailed,
		Details: err.Error(),
	}
}
