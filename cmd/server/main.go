// WOUDC client service entry point
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

	"github.com/joho/godotenv"

	"github.com/ozonewatch/woudc-client/internal/api"
	"github.com/ozonewatch/woudc-client/internal/config"
	"github.com/ozonewatch/woudc-client/internal/metrics"
	"github.com/ozonewatch/woudc-client/internal/ogcapi"
	"github.com/ozonewatch/woudc-client/internal/wfs"
	"github.com/ozonewatch/woudc-client/internal/woudc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env file for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set up logger
	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("starting WOUDC client service",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"upstream", cfg.WOUDC.BaseURL,
		"protocol", cfg.WOUDC.Protocol,
	)

	// Load dataset definitions
	var datasets *config.DatasetRegistry
	if cfg.WOUDC.DatasetsDir != "" {
		datasets, err = config.LoadDatasets(cfg.WOUDC.DatasetsDir)
		if err != nil {
			logger.Warn("failed to load datasets, using built-in registry",
				"dir", cfg.WOUDC.DatasetsDir, "error", err)
			datasets = config.BuiltinDatasets()
		}
	} else {
		datasets = config.BuiltinDatasets()
	}
	logger.Info("loaded datasets", "count", datasets.Count())

	// Create the feature source for the configured protocol
	var source woudc.FeatureSource
	switch cfg.WOUDC.Protocol {
	case "ogcapi":
		client := ogcapi.NewClient(cfg.WOUDC.BaseURL, cfg.WOUDC.Timeout).WithLogger(logger)
		source = woudc.NewOGCAPISource(client)
		logger.Info("using OGC API source", "base_url", cfg.WOUDC.BaseURL)
	default:
		client := wfs.NewClient(cfg.WOUDC.BaseURL, cfg.WOUDC.Timeout).WithLogger(logger)
		source = woudc.NewWFSSource(client)
		logger.Info("using WFS source", "base_url", cfg.WOUDC.BaseURL)
	}

	// Metrics with upstream fetch instrumentation
	provider := metrics.Init()
	source = provider.InstrumentSource(source)

	// Create the query engine
	engine := woudc.NewClient(source).
		WithLogger(logger).
		WithPageSize(cfg.WOUDC.PageSize)

	// Create handlers and router
	handlers := api.NewHandlers(cfg, engine, datasets, logger)
	router := api.NewRouter(handlers, logger, provider)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down server", "timeout", cfg.Server.ShutdownTimeout)
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
