// Package server is the HTTP and WebSocket edge. Handlers bind input,
// resolve the caller's identity and delegate every operation to the
// application layer.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/timayobrian6-droid/Internship-tracker/internal/app"
	"github.com/timayobrian6-droid/Internship-tracker/internal/broadcast"
	"github.com/timayobrian6-droid/Internship-tracker/internal/config"
	"github.com/timayobrian6-droid/Internship-tracker/internal/domain"
	apperrors "github.com/timayobrian6-droid/Internship-tracker/internal/errors"
)

const sessionMaxAgeDays = 7

// appService is everything handlers need from the application layer.
type appService interface {
	domain.AppService
	BuildDashboard(ctx context.Context, id domain.Identity) (*app.DashboardView, error)
}

// postgresHealthChecker is a minimal interface for PostgreSQL health checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

// redisHealthChecker is a minimal interface for Redis health checks.
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	app          appService
	hub          *broadcast.Hub
	directory    domain.AccountDirectory
	sessionStore *sessions.CookieStore
	upgrader     websocket.Upgrader
	db           postgresHealthChecker
	redis        redisHealthChecker
	startTime    time.Time
}

func NewServer(
	cfg *config.Config,
	svc appService,
	hub *broadcast.Hub,
	directory domain.AccountDirectory,
	db postgresHealthChecker,
	redis redisHealthChecker,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(apperrors.Middleware())
	e.Use(newRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst))

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          svc,
		hub:          hub,
		directory:    directory,
		sessionStore: sessionStore,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		db:        db,
		redis:     redis,
		startTime: time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(":" + s.config.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
