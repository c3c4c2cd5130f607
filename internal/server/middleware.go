package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

const (
	sessionName        = "session"
	sessionKeyUserID   = "user_id"
	sessionKeyRole     = "role"
	identityContextKey = "identity"
)

// requireIdentity resolves the session cookie into a full identity and stores
// it in the request context. The session carries only (user id, role); the
// directory confirms the matching profile still exists on every request.
func (s *Server) requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			return apperrors.UnauthenticatedError("invalid session")
		}

		rawUserID, ok := sess.Values[sessionKeyUserID].(string)
		if !ok {
			return apperrors.UnauthenticatedError("not logged in")
		}
		rawRole, ok := sess.Values[sessionKeyRole].(string)
		if !ok {
			return apperrors.UnauthenticatedError("not logged in")
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			return apperrors.UnauthenticatedError("invalid session user id")
		}

		identity, err := s.directory.Resolve(c.Request().Context(), userID, domain.Role(rawRole))
		if err != nil {
			return apperrors.UnauthenticatedError("unknown account").WithField("user_id", rawUserID)
		}

		c.Set(identityContextKey, *identity)
		c.Set("userID", userID)
		return next(c)
	}
}

// identityFromContext retrieves the identity stored by requireIdentity.
func identityFromContext(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(identityContextKey).(domain.Identity)
	if !ok {
		return domain.Identity{}, apperrors.InternalError("missing identity in context", nil)
	}
	return id, nil
}
