package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

type createSessionRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// handleCreateSession establishes the identity cookie. Authentication itself
// happens upstream; this endpoint binds the vouched-for account to a session
// after confirming the profile exists.
func (s *Server) handleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return apperrors.ValidationError("invalid user id").WithField("user_id", req.UserID)
	}

	role := domain.Role(req.Role)
	identity, err := s.directory.Resolve(c.Request().Context(), userID, role)
	if err != nil {
		return mapDomainError(err)
	}

	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or tampered cookie still yields a fresh session.
		sess.Values = make(map[any]any)
	}
	sess.Values[sessionKeyUserID] = userID.String()
	sess.Values[sessionKeyRole] = string(role)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return apperrors.InternalError("failed to save session", err)
	}

	if err := c.JSON(http.StatusCreated, map[string]string{
		"user_id": identity.UserID.String(),
		"role":    string(identity.Role),
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteSession(c echo.Context) error {
	sess, err := s.sessionStore.Get(c.Request(), sessionName)
	if err == nil {
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return apperrors.InternalError("failed to clear session", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
