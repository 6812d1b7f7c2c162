package bootstrap

import (
	"context"
	"log/slog"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/cache"
	"github.com/Domenick1991/carrental/internal/kafka"
	"go.uber.org/fx"
)

var InfraModule = fx.Module("infra",
	fx.Provide(
		NewRedisCache,
		NewProducer,
	),
)

// NewRedisCache returns nil when redis is not configured or unreachable at
// startup; the catalog is then read straight from storage and idempotency
// keys are not enforced.
func NewRedisCache(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) *cache.RedisCache {
	if !cfg.Redis.Enabled() {
		logger.Info("redis disabled")
		return nil
	}

	rc := cache.NewRedisCache(cfg.Redis, cfg.Booking.CarsCacheTTL())
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, continuing without cache", slog.String("addr", cfg.Redis.Addr), slog.String("error", err.Error()))
		_ = rc.Close()
		return nil
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return rc.Close()
		},
	})
	return rc
}

// NewProducer returns nil when no brokers are configured.
func NewProducer(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) *kafka.Producer {
	if !cfg.Kafka.Enabled() {
		logger.Info("kafka disabled, booking events are not published")
		return nil
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})
	return producer
}
