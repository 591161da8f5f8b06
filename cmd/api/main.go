package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubhaus/backoffice/internal/app"
	"github.com/clubhaus/backoffice/internal/auth"
	"github.com/clubhaus/backoffice/internal/infra"
	"github.com/clubhaus/backoffice/internal/provider"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Parse JWT expiry durations
	adminExpiry, err := time.ParseDuration(cfg.JWTAdminExpiry)
	if err != nil {
		return fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	serviceExpiry, err := time.ParseDuration(cfg.JWTServiceExpiry)
	if err != nil {
		return fmt.Errorf("parse service JWT expiry: %w", err)
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, adminExpiry, serviceExpiry)

	sweepInterval, err := time.ParseDuration(cfg.ExpirySweepInterval)
	if err != nil {
		return fmt.Errorf("parse expiry sweep interval: %w", err)
	}
	requestInterval, err := time.ParseDuration(cfg.FreeRequestInterval)
	if err != nil {
		return fmt.Errorf("parse free request interval: %w", err)
	}

	// Assemble the application
	gateway := provider.NewGatewayClient(cfg.GatewayBaseURL, cfg.GatewayAPIToken, logger)
	application := app.New(app.Deps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Gateway:            gateway,
		Logger:             logger,
		BotUsername:        cfg.BotUsername,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Background workers
	go application.Subscriptions.RunExpirySweeper(ctx, sweepInterval)
	go application.Channels.RunRequestWorker(ctx, requestInterval)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      application.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	// Let in-flight award handlers drain before exiting.
	application.Bus.Wait()

	logger.Info("server stopped gracefully")
	return nil
}
