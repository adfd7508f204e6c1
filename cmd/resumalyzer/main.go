package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resumalyzer/internal/cli"
	"resumalyzer/internal/config"
	"resumalyzer/internal/errors"
	"resumalyzer/internal/observability"

	"github.com/joho/godotenv"
)

func main() {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(os.Getenv(config.EnvPrefix+"_CONFIG"), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logging
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		logger.LogError(err, "Failed to load secrets from Vault")
		os.Exit(1)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, cli.Version), logger)
	if err != nil {
		logger.LogError(err, "Failed to initialize observability")
		os.Exit(1)
	}

	// Log startup
	logger.Debug("Starting resumalyzer",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider)

	// Execute command with cancellable context
	err = cli.Execute(ctx, &cli.App{Config: cfg, Logger: logger, Observability: om})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := om.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.LogError(shutdownErr, "Failed to shut down observability")
	}

	if err != nil {
		logger.LogError(err, "Application execution failed")
		cancel()
		stop()
		os.Exit(1)
	}
}
