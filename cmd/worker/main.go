package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-grosir/internal/config"
	"github.com/noah-isme/backend-grosir/internal/lock"
	"github.com/noah-isme/backend-grosir/internal/obs"
	"github.com/noah-isme/backend-grosir/internal/promo"
)

const warmLockKey = "lock:promo-warm"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "grosir"), nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	promoService, err := promo.NewService(promo.ServiceConfig{
		Store: promo.NewRepo(pool),
		Redis: redisClient,
		TTL:   cfg.PromoCacheTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise promo service")
	}

	locker := lock.Locker{R: redisClient, RetryBackoff: cfg.LockRetryBackoff}

	warm := func(ctx context.Context) error {
		promos, err := promoService.Warm(ctx)
		if err != nil {
			return err
		}
		logger.Debug().Int("promotions", len(promos)).Msg("promotion snapshot refreshed")
		return nil
	}

	// Warm eagerly on boot so the API never serves its first order off a cold cache.
	if acquired, err := locker.TryLock(ctx, warmLockKey, cfg.LockTTL, warm); err != nil {
		logger.Error().Err(err).Msg("initial snapshot refresh")
	} else if !acquired {
		logger.Debug().Msg("initial refresh skipped, lock held elsewhere")
	}

	ticker := time.NewTicker(cfg.PromoWarmTick)
	defer ticker.Stop()

	logger.Info().Dur("tick", cfg.PromoWarmTick).Msg("worker starting")
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("worker shutdown complete")
			return
		case <-ticker.C:
			acquired, err := locker.TryLock(ctx, warmLockKey, cfg.LockTTL, warm)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("snapshot refresh")
				continue
			}
			if !acquired {
				logger.Debug().Msg("refresh skipped, lock held elsewhere")
			}
		}
	}
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "grosir-worker"
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
