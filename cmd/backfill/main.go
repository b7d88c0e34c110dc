package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dawadex/backend/internal/application"
	"github.com/dawadex/backend/internal/infrastructure/clients/postgres"
	redisclient "github.com/dawadex/backend/internal/infrastructure/clients/redis"
	"github.com/dawadex/backend/internal/infrastructure/observability"
	"github.com/dawadex/backend/pkg/config"
)

// Offline batch that assigns salt signatures to catalog products that lack
// one. Safe to re-run: already signed products are never revisited and
// terminology lookups are served from the persistent cache.
func main() {
	// Missing .env is fine in deployed environments
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		observability.GetLogger().Fatal().Err(err).Msg("failed to load config")
	}

	observability.InitLogger("dawadex-backfill", os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("tracing setup failed, continuing without it")
		} else {
			defer shutdown(context.Background())
		}
	}
	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Warn().Err(err).Msg("metrics setup failed, continuing without them")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	// The batch only needs the terminology path, but the knowledge caches
	// tolerate a missing Redis, so a failed connect is not fatal
	redisClient, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, knowledge caches run in-process only")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	app := application.New(cfg, pgClient, redisClient, metrics)

	logger.Info().Msg("starting signature backfill")
	start := time.Now()

	summary, err := app.Signature.BackfillProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("backfill aborted")
	}
	if summary != nil {
		logger.Info().
			Dur("elapsed", time.Since(start)).
			Int("processed", summary.TotalProcessed).
			Int("signed", summary.SignedCount).
			Int("unsigned", summary.UnsignedCount).
			Msg("backfill summary")
	}
	if err != nil {
		os.Exit(1)
	}
}
