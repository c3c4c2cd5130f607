package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session endpoints. Creation is unauthenticated; the identity provider
	// upstream has already vouched for the account id.
	s.echo.POST("/auth/session", s.handleCreateSession)
	s.echo.DELETE("/auth/session", s.handleDeleteSession, s.requireIdentity)

	api := s.echo.Group("/api", s.requireIdentity)

	api.GET("/dashboard", s.handleDashboard)

	api.POST("/subscriptions/:companyID", s.handleSubscribe)
	api.DELETE("/subscriptions/:companyID", s.handleUnsubscribe)

	api.GET("/openings", s.handleListOpenings)
	api.POST("/openings", s.handleCreateOpening)
	api.POST("/openings/:id/close", s.handleCloseOpening)

	api.GET("/applications", s.handleListApplications)
	api.POST("/applications", s.handleCreateApplication)
	api.GET("/applications/:id", s.handleGetApplication)
	api.PATCH("/applications/:id/stage", s.handlePatchStage)
	api.PATCH("/applications/:id/essay", s.handlePatchEssay)

	api.GET("/applications/:id/clarification", s.handleGetClarification)
	api.POST("/applications/:id/clarification", s.handleSendClarification)
	api.POST("/applications/:id/clarification/response", s.handleRespondClarification)

	api.POST("/applications/:id/interview", s.handleScheduleInterview)

	api.GET("/admin/audit", s.handleListAudit)

	// WebSocket endpoint for the change event stream.
	s.echo.GET("/ws", s.handleWebSocket, s.requireIdentity)
}
