package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

type createApplicationRequest struct {
	OpeningID string `json:"opening_id"`
	Essay     string `json:"essay"`
}

func (s *Server) handleCreateApplication(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}

	var req createApplicationRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	openingID, err := parseUUIDField(req.OpeningID, "opening_id")
	if err != nil {
		return err
	}

	app, err := s.app.CreateApplication(c.Request().Context(), id, openingID, req.Essay)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, app)
}

func (s *Server) handleListApplications(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	scope := domain.Scope(c.QueryParam("scope"))

	apps, err := s.app.ListApplications(c.Request().Context(), id, scope)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, apps)
}

func (s *Server) handleGetApplication(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	app, err := s.app.GetApplication(c.Request().Context(), id, applicationID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, app)
}

type patchStageRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) handlePatchStage(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req patchStageRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	to := domain.Stage(req.Stage)
	if !to.Valid() {
		return apperrors.ValidationError("unknown stage").WithField("stage", req.Stage)
	}

	app, err := s.app.PatchApplicationStage(c.Request().Context(), id, applicationID, to)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, app)
}

type patchEssayRequest struct {
	Essay string `json:"essay"`
}

func (s *Server) handlePatchEssay(c echo.Context) error {
	id, err := identityFromContext(c)
	if err != nil {
		return err
	}
	applicationID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req patchEssayRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	app, err := s.app.PatchApplicationEssay(c.Request().Context(), id, applicationID, req.Essay)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, app)
}
