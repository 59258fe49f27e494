package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/admitra/portal-backend/internal/config"
	"github.com/admitra/portal-backend/internal/database"
	"github.com/admitra/portal-backend/internal/handler"
	"github.com/admitra/portal-backend/internal/logger"
	"github.com/admitra/portal-backend/internal/repository"
	"github.com/admitra/portal-backend/internal/router"
	"github.com/admitra/portal-backend/internal/service"
	"github.com/admitra/portal-backend/internal/validator"
	"github.com/admitra/portal-backend/internal/worker"
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
		Msg("Starting Admitra Portal Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
	applicantRepo := repository.NewApplicantRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	questionSetRepo := repository.NewQuestionSetRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb, applicantRepo, staffRepo)
	profileService := service.NewProfileService(applicantRepo, departmentRepo)
	questionSource := service.NewQuestionSource(questionSetRepo, rdb, log)
	questionSetService := service.NewQuestionSetService(questionSetRepo, questionSource, log)
	notifier := worker.NewQueueNotifier(rdb, log)
	attemptService := service.NewAttemptService(
		attemptRepo, applicantRepo, questionSource, departmentRepo, notifier, cfg.AttemptDuration, log)
	resultService := service.NewResultService(attemptRepo, questionSetRepo, departmentRepo, rdb, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Exam:        handler.NewExamHandler(attemptService),
		Profile:     handler.NewProfileHandler(profileService),
		QuestionSet: handler.NewQuestionSetHandler(questionSetService),
		Result:      handler.NewResultHandler(resultService, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	statsWorker := worker.NewStatsWorker(rdb, log)
	go statsWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
