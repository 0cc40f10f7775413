package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"reelmux/internal/extract"
	"reelmux/internal/logging"
	"reelmux/internal/services"
)

func (s *Server) handleExtract(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodPost:
	default:
		return methodNotAllowed()
	}
	if s.extractor == nil {
		return APIError{Status: http.StatusServiceUnavailable, Message: "Extraction is not configured"}
	}

	var body ExtractRequest
	if err := decodeJSON(c, &body); err != nil {
		return err
	}

	ctx := c.Request().Context()
	result, err := s.extractor.Extract(ctx, body.URL)
	if err != nil {
		return s.extractError(c, err)
	}

	resp := ExtractResponse{
		Result:     result,
		NeedsMerge: extract.NeedsMerge(result.Medias),
	}
	if pair, err := extract.SelectPair(result.Medias); err == nil {
		resp.Pair = &pair
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) extractError(c echo.Context, err error) error {
	switch {
	case services.IsClientError(err):
		return newAPIError(http.StatusBadRequest, extract.InvalidURLMessage)
	case errors.Is(err, services.ErrConfiguration):
		return APIError{Status: http.StatusInternalServerError, InternalMessage: err.Error()}
	}

	logging.WithContext(c.Request().Context(), s.logger).Warn("extraction failed", logging.Error(err))
	apiErr := APIError{
		Status:  http.StatusBadGateway,
		Message: msgExtractFailed,
		Details: err.Error(),
	}
	if errors.Is(err, extract.ErrNoMedia) {
		apiErr.Message = extract.ErrNoMedia.Error()
		apiErr.Details = ""
	}
	return apiErr
}
