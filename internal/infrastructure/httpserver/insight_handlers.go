package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

func (s *Server) getInsights(c echo.Context) error {
	householdID, err := helpers.GetHouseholdIDFromContext(c)
	if err != nil {
		return err
	}

	artifact, fromCache, err := s.insightSvc.Get(c.Request().Context(), householdID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "insights unavailable")
	}

	if fromCache {
		c.Response().Header().Set("X-Cache", "HIT")
	} else {
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return c.JSONBlob(http.StatusOK, artifact)
}
