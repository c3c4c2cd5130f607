package server

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

// mapDomainError translates domain sentinels into structured errors with the
// right HTTP status. Unknown errors become internal errors.
func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, domain.ErrCompanyNotFound),
		errors.Is(err, domain.ErrOpeningNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrClarificationNotFound),
		errors.Is(err, domain.ErrInterviewNotFound):
		return apperrors.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrWrongRole),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrForbiddenTransition):
		return apperrors.ForbiddenError(err.Error())
	case errors.Is(err, domain.ErrNotSubscribed),
		errors.Is(err, domain.ErrAlreadyApplied),
		errors.Is(err, domain.ErrRejectionLocked),
		errors.Is(err, domain.ErrStageConflict),
		errors.Is(err, domain.ErrNoPendingRequest),
		errors.Is(err, domain.ErrEssayLocked),
		errors.Is(err, domain.ErrOpeningClosed):
		return apperrors.ConflictError(err.Error())
	default:
		return apperrors.InternalError("operation failed", err)
	}
}

// paramUUID parses a path parameter as a UUID.
func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	raw := c.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField(name, raw)
	}
	return id, nil
}

// parseUUIDField parses a UUID carried in a request body field.
func parseUUIDField(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.ValidationError("invalid UUID format").WithField(name, raw)
	}
	return id, nil
}
