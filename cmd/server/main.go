package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/timayobrian6-droid/Internship-tracker/internal/app"
	"github.com/timayobrian6-droid/Internship-tracker/internal/broadcast"
	"github.com/timayobrian6-droid/Internship-tracker/internal/bus"
	"github.com/timayobrian6-droid/Internship-tracker/internal/config"
	"github.com/timayobrian6-droid/Internship-tracker/internal/database"
	"github.com/timayobrian6-droid/Internship-tracker/internal/logging"
	"github.com/timayobrian6-droid/Internship-tracker/internal/notify"
	"github.com/timayobrian6-droid/Internship-tracker/internal/server"
)

func setupConfig() *config.Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *goredis.Client {
	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to parse Redis URL", "error", err)
		os.Exit(1)
	}
	client := goredis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server, hub *broadcast.Hub, cancelBus context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancelBus()
		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	// Construct repositories
	subscriptionRepo := database.NewSubscriptionRepo(pool)
	openingRepo := database.NewOpeningRepo(pool)
	applicationRepo := database.NewApplicationRepo(pool)
	clarificationRepo := database.NewClarificationRepo(pool)
	interviewRepo := database.NewInterviewSlotRepo(pool)
	auditRepo := database.NewAuditRepo(pool)
	directory := database.NewDirectoryRepo(pool)

	dispatcher := notify.NewDispatcher(cfg.NotifyWebhookURL)

	hub := broadcast.NewHub(clock, cfg.MaxClientsPerIdentity)
	bridge := bus.NewBridge(hub, redisClient)

	busCtx, cancelBus := context.WithCancel(context.Background())
	go bridge.Run(busCtx)

	appSvc := app.NewService(
		subscriptionRepo,
		openingRepo,
		applicationRepo,
		clarificationRepo,
		interviewRepo,
		auditRepo,
		dispatcher,
		bridge,
		clock,
	)

	srv := server.NewServer(cfg, appSvc, hub, directory, pool, redisClient)

	done := runGracefulShutdown(srv, hub, cancelBus)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
