package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/topicrooms/internal/api"
	"github.com/mcoot/topicrooms/internal/config"
	"github.com/mcoot/topicrooms/internal/errutil"
	"github.com/mcoot/topicrooms/internal/factory"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Set up logging with JSON output
	logger := newLogger(cfg.Log.SlogLevel())
	slog.SetDefault(logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		errutil.LogError(logger, "failed to create application", err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			errutil.LogError(logger, "failed to close storage", err)
		}
	}()

	stopJanitor := app.Sessions.StartJanitor()
	defer stopJanitor()

	router := api.NewRouter(api.RouterConfig{
		Logger:   logger,
		Metrics:  app.Metrics,
		Sessions: app.Sessions,
		Accounts: app.Accounts,
		Catalog:  app.Catalog,
		Rooms:    app.Rooms,
	})
	server := api.NewServer(router, cfg.Server, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			errutil.LogError(logger, "server error", err)
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			errutil.LogError(logger, "shutdown error", err)
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}

// factoryConfig maps loaded settings onto the factory's wiring struct
func factoryConfig(cfg *config.AppConfig, logger *slog.Logger) factory.Config {
	redisCfg := cfg.Redis
	pgCfg := cfg.Postgres
	return factory.Config{
		Logger:           logger,
		StorageType:      cfg.Storage.Type,
		SessionStoreType: cfg.Storage.Sessions,
		RedisConfig:      &redisCfg,
		PostgresConfig:   &pgCfg,
		SessionConfig:    cfg.Session,
		HasherConfig:     cfg.Hasher,
		ValidationRules:  cfg.Validation,
		RoomConfig:       cfg.Rooms,
		Topics:           cfg.ModelTopics(),
	}
}
