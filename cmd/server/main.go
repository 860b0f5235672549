package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/trendysync/internal/config"
	"github.com/iudanet/trendysync/internal/server"
	"github.com/iudanet/trendysync/internal/server/jwt"
	"github.com/iudanet/trendysync/internal/server/middleware"
	"github.com/iudanet/trendysync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to YAML config")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateBackend(); err != nil {
		return fmt.Errorf("invalid backend config: %w", err)
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.Backend.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if n, err := store.PurgeExpiredTokens(ctx, time.Now()); err != nil {
		logger.Warn("failed to purge expired refresh tokens", "error", err)
	} else if n > 0 {
		logger.Info("purged expired refresh tokens", "count", n)
	}

	opts := server.Options{
		Version:        Version,
		RateLimit:      cfg.Backend.RateLimit,
		AuthRateLimit:  cfg.Backend.AuthRateLimit,
		RateWindow:     cfg.Backend.RateWindow,
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.Backend.Faults {
		opts.Faults = middleware.NewFaultInjector(logger)
		logger.Warn("fault injection enabled", "endpoint", "/debug/faults")
	}

	jwtService := jwt.NewService(cfg.Backend.JWTSecret, cfg.Backend.AccessTTL, cfg.Backend.RefreshTTL)
	router := server.NewRouter(logger, store, jwtService, opts)
	defer router.Close()

	srv := &http.Server{
		Addr:              cfg.Backend.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("starting trendy dev backend", "addr", cfg.Backend.Addr, "db", cfg.Backend.DBPath, "version", Version)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	logger.Info("server stopped gracefully")
	return nil
}

func printVersion() {
	fmt.Printf("Trendy Dev Backend\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
