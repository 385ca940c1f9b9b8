// Package observability wires the service's OpenTelemetry instruments. The
// global meter provider is a no-op unless the deployment installs an SDK, so
// recording is always safe to call.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scope = "lift-telemetry-service"

// Metrics carries the ingestion and delivery instruments.
type Metrics struct {
	ingested        metric.Int64Counter
	persisted       metric.Int64Counter
	persistFailures metric.Int64Counter
	broadcasts      metric.Int64Counter
	commands        metric.Int64Counter
	subscribers     metric.Int64UpDownCounter
}

func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(scope)

	ingested, err := meter.Int64Counter("lift.messages.ingested",
		metric.WithDescription("Inbound broker messages accepted by the pipeline"),
	)
	if err != nil {
		return nil, err
	}

	persisted, err := meter.Int64Counter("lift.events.persisted",
		metric.WithDescription("Classified events written to the durable log"),
	)
	if err != nil {
		return nil, err
	}

	persistFailures, err := meter.Int64Counter("lift.events.persist_failures",
		metric.WithDescription("Writes absorbed by the ingestion path after storage failure"),
	)
	if err != nil {
		return nil, err
	}

	broadcasts, err := meter.Int64Counter("lift.hub.broadcasts",
		metric.WithDescription("Messages fanned out to live subscribers"),
	)
	if err != nil {
		return nil, err
	}

	commands, err := meter.Int64Counter("lift.commands.published",
		metric.WithDescription("Outbound command publish attempts"),
	)
	if err != nil {
		return nil, err
	}

	subscribers, err := meter.Int64UpDownCounter("lift.hub.active_subscribers",
		metric.WithDescription("Currently registered live-stream subscribers"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ingested:        ingested,
		persisted:       persisted,
		persistFailures: persistFailures,
		broadcasts:      broadcasts,
		commands:        commands,
		subscribers:     subscribers,
	}, nil
}

func (m *Metrics) MessageIngested(ctx context.Context, topic string) {
	m.ingested.Add(ctx, 1, metric.WithAttributes(attribute.String("topic", topic)))
}

func (m *Metrics) EventPersisted(ctx context.Context, typeName string) {
	m.persisted.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", typeName)))
}

func (m *Metrics) PersistFailed(ctx context.Context) {
	m.persistFailures.Add(ctx, 1)
}

func (m *Metrics) MessageBroadcast(ctx context.Context) {
	m.broadcasts.Add(ctx, 1)
}

func (m *Metrics) CommandPublished(ctx context.Context, sent bool) {
	m.commands.Add(ctx, 1, metric.WithAttributes(attribute.Bool("sent", sent)))
}

func (m *Metrics) SubscriberRegistered(ctx context.Context) {
	m.subscribers.Add(ctx, 1)
}

func (m *Metrics) SubscriberUnregistered(ctx context.Context) {
	m.subscribers.Add(ctx, -1)
}
