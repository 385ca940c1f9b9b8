package service

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/liftops/lift-telemetry-service/config"
	"github.com/liftops/lift-telemetry-service/internal/observability"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		NewPipeline,

		// Domain services
		fx.Annotate(
			NewEventRecorder,
			fx.As(new(Recorder)),
		),
		fx.Annotate(
			NewDeliveryService,
			fx.As(new(Deliverer)),
		),
		fx.Annotate(
			NewAnalyticsService,
			fx.As(new(Analytics)),
		),
		fx.Annotate(
			func(pub BrokerPublisher, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *CommandService {
				return NewCommandService(pub, cfg.Broker.CommandTopic, metrics, logger)
			},
			fx.As(new(Commander)),
		),
	),
)
