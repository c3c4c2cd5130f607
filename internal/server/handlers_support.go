package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

type clarificationRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSendClarification(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req clarificationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Text == "" {
		return apperrors.ValidationError("text is required")
	}

	thread, err := s.app.SendClarificationRequest(c.Request().Context(), id, applicationID, req.Text)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, thread)
}

func (s *Server) handleRespondClarification(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req clarificationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.Text == "" {
		return apperrors.ValidationError("text is required")
	}

	thread, err := s.app.RespondClarificationRequest(c.Request().Context(), id, applicationID, req.Text)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, thread)
}

func (s *Server) handleGetClarification(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	thread, err := s.app.GetClarification(c.Request().Context(), id, applicationID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, thread)
}

type scheduleInterviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
}

func (s *Server) handleScheduleInterview(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req scheduleInterviewRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.ScheduledAt.IsZero() {
		return apperrors.ValidationError("scheduled_at is required")
	}

	slot, err := s.app.ScheduleInterview(c.Request().Context(), id, applicationID, req.ScheduledAt, req.Location, req.Notes)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, slot)
}
