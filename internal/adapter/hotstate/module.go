package hotstate

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/liftops/lift-telemetry-service/config"
)

var Module = fx.Module(
	"hotstate",

	fx.Provide(NewMirror),
)

// NewMirror selects the backing implementation from configuration. An empty
// Redis address disables the mirror entirely.
func NewMirror(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) Mirror {
	if cfg.Redis.Addr == "" {
		logger.Info("hot-state mirror disabled")
		return Disabled{}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	lc.Append(fx.Hook{
		// An unreachable mirror is not fatal; each Record retries on its
		// own and failures are logged by the pipeline.
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("hot-state mirror unreachable",
					slog.String("addr", cfg.Redis.Addr),
					slog.Any("error", err),
				)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	logger.Info("hot-state mirror enabled",
		slog.String("addr", cfg.Redis.Addr),
		slog.Duration("ttl", cfg.Redis.TTL),
	)
	return NewRedisMirror(client, cfg.Redis.TTL)
}
