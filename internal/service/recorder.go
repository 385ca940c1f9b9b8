package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/liftops/lift-telemetry-service/internal/domain/catalog"
	"github.com/liftops/lift-telemetry-service/internal/domain/model"
	"github.com/liftops/lift-telemetry-service/internal/observability"
	"github.com/liftops/lift-telemetry-service/internal/storage"
)

// Recorder appends classified inbound messages to the durable event log.
type Recorder interface {
	// Record classifies msg and persists it when matched; payloads outside
	// the catalog return nil without writing. A storage failure is returned
	// after the store rolls the write back; the caller decides whether to
	// absorb it.
	Record(ctx context.Context, msg model.InboundMessage) error
}

// [IMPLEMENTATION] PRIVATE FIELDS, INTERFACE EXPOSED VIA MODULE
type EventRecorder struct {
	store   storage.Store
	breaker *gobreaker.CircuitBreaker
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewEventRecorder wraps the write path in a circuit breaker so a dead store
// degrades to fast failure instead of a timeout per message.
func NewEventRecorder(store storage.Store, metrics *observability.Metrics) *EventRecorder {
	settings := gobreaker.Settings{
		Name:    "event-log",
		Timeout: 10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &EventRecorder{
		store:   store,
		breaker: gobreaker.NewCircuitBreaker(settings),
		metrics: metrics,
		tracer:  otel.Tracer("lift-telemetry-service"),
	}
}

func (r *EventRecorder) Record(ctx context.Context, msg model.InboundMessage) error {
	c, ok := catalog.Classify(msg.Payload)
	if !ok {
		// Classification misses are not errors; the message stays visible
		// in the ring and the live stream.
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "recorder.Record")
	defer span.End()

	_, err := r.breaker.Execute(func() (any, error) {
		return r.store.AppendEvent(ctx, c.Name, msg.ReceivedAt, c.Floor)
	})
	if err != nil {
		r.metrics.PersistFailed(ctx)
		return fmt.Errorf("append %q: %w", c.Name, err)
	}
	r.metrics.EventPersisted(ctx, c.Name)
	return nil
}
