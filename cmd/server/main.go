package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"compdir/internal/config"
	"compdir/internal/directory"
	"compdir/internal/logging"
	"compdir/internal/record"
	"compdir/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"sheet_url", cfg.Sheet.URL,
		"refresh_interval", cfg.Sheet.RefreshInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Build the directory core with the default field and section layout
	service, err := directory.NewService(cfg.Sheet, record.DefaultFieldMap(), record.DefaultSections(), nil)
	if err != nil {
		slog.Error("failed to create directory service", "error", err)
		os.Exit(1)
	}

	// Initial load. A failure is not fatal: the API reports the missing
	// batch and a manual refresh can recover once the sheet is reachable.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.Sheet.FetchTimeout)
	if err := service.Refresh(loadCtx); err != nil {
		slog.Warn("initial sheet load failed", "error", err)
	}
	cancelLoad()

	server := web.NewServer(service, cfg)

	// Background refresh ticker, when configured
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if cfg.Sheet.RefreshInterval > 0 {
		go refreshLoop(jobCtx, service, cfg.Sheet.RefreshInterval)
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// refreshLoop re-fetches the sheet on a fixed cadence until ctx is done.
// Failures are logged and retried on the next tick; a stale response that
// lost the race against a manual refresh is not a failure.
func refreshLoop(ctx context.Context, service *directory.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := service.Refresh(ctx); err != nil {
				slog.Warn("background refresh failed", "error", err)
			}
		}
	}
}
