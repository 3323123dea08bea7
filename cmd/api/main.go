// Command api is the Mesa Técnica scorekeeping API server.
//
// Usage:
//
//	mesa-api
//	API_PORT=8080 mesa-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/ligaboreal/mesa-tecnica/internal/api"
	"github.com/ligaboreal/mesa-tecnica/internal/api/handler"
	"github.com/ligaboreal/mesa-tecnica/internal/config"
	"github.com/ligaboreal/mesa-tecnica/internal/db"
	"github.com/ligaboreal/mesa-tecnica/internal/engine"
	"github.com/ligaboreal/mesa-tecnica/internal/listener"
	"github.com/ligaboreal/mesa-tecnica/internal/store"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Session manager over the persisted game documents
	st := store.NewPostgres(pool)
	mgr := engine.NewManager(st, cfg.Rules(), cfg.ClockTick, logger)
	defer mgr.Close()

	// Start LISTEN/NOTIFY consumer for cross-station re-sync
	go listener.Start(ctx, cfg.DatabaseURL, mgr, logger)

	// Create router
	h := handler.New(mgr, pool.HealthCheck)
	router := api.NewRouter(h, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Mesa Técnica API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// newLogger picks the handler for the environment: colorized tint
// output on a dev console, plain text in production.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
