package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/ascent-backend/internal/config"
	"github.com/stemsi/ascent-backend/internal/database"
	"github.com/stemsi/ascent-backend/internal/handler"
	"github.com/stemsi/ascent-backend/internal/logger"
	"github.com/stemsi/ascent-backend/internal/middleware"
	"github.com/stemsi/ascent-backend/internal/repository"
	"github.com/stemsi/ascent-backend/internal/router"
	"github.com/stemsi/ascent-backend/internal/service"
	"github.com/stemsi/ascent-backend/internal/validator"
	"github.com/stemsi/ascent-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Ascent Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Apply Migrations ──────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg.DatabaseURL, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	journeyRepo := repository.NewJourneyRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewExamSessionRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Start Broadcast Worker ────────────────────────────────────────
	// Started before the services so no event is enqueued without a consumer.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	broadcaster := worker.NewBroadcastWorker(rdb, cfg.BroadcastQueueSize, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		broadcaster.Start(workerCtx)
	}()

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, rdb, log)
	userService := service.NewUserService(userRepo, authService, log)
	catalogService := service.NewCatalogService(journeyRepo, questionRepo, rdb, cfg, log)
	sessionService := service.NewExamSessionService(sessionRepo, catalogService, userRepo, broadcaster, cfg, log)
	atlasService := service.NewAtlasService(catalogService, sessionRepo)
	dashboardService := service.NewDashboardService(dashboardRepo, sessionRepo, userRepo, catalogService, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(authService, userService),
		Journey: handler.NewJourneyHandler(catalogService, atlasService),
		Session: handler.NewSessionHandler(sessionService),
		Admin:   handler.NewAdminHandler(dashboardService, sessionService),
		WS:      handler.NewWSHandler(rdb, dashboardService, log, cfg.AllowedOrigins),
	}

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the catalog into Redis BEFORE accepting traffic.
	if err := catalogService.PrewarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	loginLimiter := middleware.NewRateLimiter(rdb, "login", cfg.AuthRatePerMinute, time.Minute, log)
	r := router.SetupRouter(authService, loginLimiter, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the broadcaster and wait for its queue to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(config.Broadcast.DrainTimeout + time.Second):
		log.Warn().Msg("Broadcast worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
