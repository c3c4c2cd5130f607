package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

// handleDashboard returns the caller's full authorized view. Clients refetch
// this after any change event; the response shape depends on the role.
func (s *Server) handleDashboard(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	view, err := s.app.BuildDashboard(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) handleListAudit(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return apperrors.ValidationError("invalid limit").WithField("limit", raw)
		}
	}

	entries, err := s.app.ListAuditEntries(c.Request().Context(), id, limit)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, entries)
}
