package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

func (s *Server) handleSubscribe(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	companyID, err := paramUUID(c, "companyID")
	if err != nil {
		return err
	}

	if err := s.app.Subscribe(c.Request().Context(), id, companyID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleUnsubscribe(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	companyID, err := paramUUID(c, "companyID")
	if err != nil {
		return err
	}

	if err := s.app.Unsubscribe(c.Request().Context(), id, companyID); err != nil {
		return mapDomainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListOpenings(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	openings, err := s.app.ListOpenings(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, openings)
}

type createOpeningRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

func (s *Server) handleCreateOpening(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	var req createOpeningRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Title == "" {
		return apperrors.ValidationError("title is required")
	}
	if req.Deadline.IsZero() {
		return apperrors.ValidationError("deadline is required")
	}

	opening, err := s.app.CreateOpening(c.Request().Context(), id, req.Title, req.Description, req.Deadline)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, opening)
}

func (s *Server) handleCloseOpening(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	openingID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	opening, err := s.app.CloseOpening(c.Request().Context(), id, openingID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, opening)
}
