package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleStatus(c echo.Context) error {
	if s.status == nil {
		return c.JSON(http.StatusOK, DaemonStatus{Running: true})
	}
	return c.JSON(http.StatusOK, s.status(c.Request().Context()))
}
