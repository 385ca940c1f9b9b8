package cmd

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/liftops/lift-telemetry-service/config"
	"github.com/liftops/lift-telemetry-service/internal/adapter/hotstate"
	"github.com/liftops/lift-telemetry-service/internal/adapter/mqtt"
	"github.com/liftops/lift-telemetry-service/internal/domain/history"
	"github.com/liftops/lift-telemetry-service/internal/domain/registry"
	"github.com/liftops/lift-telemetry-service/internal/handler/httpapi"
	"github.com/liftops/lift-telemetry-service/internal/observability"
	"github.com/liftops/lift-telemetry-service/internal/service"
	"github.com/liftops/lift-telemetry-service/internal/storage/sqlstore"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			func(cfg *config.Config) *history.Ring { return history.New(cfg.History.Capacity) },
			func(p *service.Pipeline) mqtt.MessageSink { return p },
			func(c *mqtt.Client) service.BrokerPublisher { return c },
		),
		// [DECORATOR_PATTERN] Declared at the root so the cached view reaches
		// every consumer; a decorator inside the service module would be
		// invisible to the handler module.
		fx.Decorate(func(next service.Analytics) service.Analytics {
			return service.NewAnalyticsCache(next)
		}),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		observability.Module,
		registry.Module,
		sqlstore.Module,
		hotstate.Module,
		service.Module,
		mqtt.Module,
		httpapi.Module,
	)
}
