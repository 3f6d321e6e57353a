package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/coach-booking-backend/internal/app"
	"github.com/nekogravitycat/coach-booking-backend/internal/coach"
	"github.com/nekogravitycat/coach-booking-backend/internal/config"
	"github.com/nekogravitycat/coach-booking-backend/internal/db"
	"github.com/nekogravitycat/coach-booking-backend/internal/jobs"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.IsProduction)
	defer func() { _ = logger.Sync() }()

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, int32(cfg.DBMaxConns))
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, logger.Named("migrate")); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize application container
	container, err := app.NewContainer(app.Config{
		IsProduction:          cfg.IsProduction,
		ProdOrigins:           cfg.ProdOrigins,
		DBPool:                pool,
		Logger:                logger,
		JWTSecret:             cfg.JWTSecret,
		JWTTTL:                cfg.JWTAccessTokenTTL,
		BcryptCost:            cfg.BcryptCost,
		Timezone:              cfg.BusinessTimezone,
		ApprovalTTL:           cfg.ApprovalTTL,
		DefaultMinHoursNotice: cfg.DefaultMinHoursNotice,
		OccurrenceWeeks:       cfg.OccurrenceWeeks,
		RateLimitMax:          cfg.RateLimitMax,
		RateLimitWindow:       cfg.RateLimitWindow,
		BusinessName:          cfg.BusinessName,
		BusinessLocation:      cfg.BusinessLocation,
		PublicBaseURL:         cfg.PublicBaseURL,
	})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	if cfg.BootstrapCoachEmail != "" && cfg.BootstrapCoachPassword != "" {
		_, err := container.Coaches.EnsureCoach(ctx, coach.RegisterRequest{
			Email:       cfg.BootstrapCoachEmail,
			Password:    cfg.BootstrapCoachPassword,
			DisplayName: cfg.BootstrapCoachName,
			IsShopAdmin: true,
		})
		if err != nil {
			logger.Fatal("failed to bootstrap coach", zap.Error(err))
		}
	}

	// Background jobs
	scheduler, err := jobs.NewScheduler(container.Bookings, container.Classes, jobs.Config{
		SweepSchedule:      cfg.SweepSchedule,
		OccurrenceSchedule: cfg.OccurrenceSchedule,
		OccurrenceWeeks:    cfg.OccurrenceWeeks,
	}, logger.Named("jobs"))
	if err != nil {
		logger.Fatal("failed to schedule jobs", zap.Error(err))
	}
	scheduler.RunGeneration(ctx)
	scheduler.RunSweep(ctx)
	scheduler.Start()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)

	logger.Info("server exited gracefully")
}
