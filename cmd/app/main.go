package main

import (
	"context"
	"meetflow/config"
	"meetflow/di"
	"meetflow/helper"
	"meetflow/shared/logger"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const otelFlushTimeout = 5 * time.Second

// @title Meetflow API
// @version 1.0
// @description Customer meeting booking with calendar and video provider sagas.
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	app, cleanup, err := di.InitializeApp()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app.Workers.Start(ctx)

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- app.HTTP.Serve()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("Received SIGTERM.")

		if err := app.HTTP.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to shut down HTTP server")
		}
	}

	app.Webhooks.Stop()
	app.Workers.Stop()

	flushCtx, cancel := context.WithTimeout(context.Background(), otelFlushTimeout)
	defer cancel()

	if err := app.Otel.Shutdown(flushCtx); err != nil {
		log.Warn().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Shut down complete.")
}
