package sqlstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/liftops/lift-telemetry-service/config"
	"github.com/liftops/lift-telemetry-service/internal/domain/catalog"
	"github.com/liftops/lift-telemetry-service/internal/storage"
)

var Module = fx.Module("storage",
	fx.Provide(
		fx.Annotate(
			func(cfg *config.Config) (*Store, error) {
				return Open(cfg.Storage.Driver, cfg.Storage.DSN)
			},
			fx.As(new(storage.Store)),
		),
	),
	fx.Invoke(func(lc fx.Lifecycle, s storage.Store) {
		lc.Append(fx.Hook{
			// Catalog seeding runs before any handler can write an event.
			OnStart: func(ctx context.Context) error {
				return s.SeedEventTypes(ctx, catalog.Names())
			},
			OnStop: func(ctx context.Context) error {
				return s.Close()
			},
		})
	}),
)
