package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/adapter/hotstate"
	"github.com/liftops/lift-telemetry-service/internal/domain/history"
	"github.com/liftops/lift-telemetry-service/internal/domain/registry"
	"github.com/liftops/lift-telemetry-service/internal/observability"
)

// Pipeline is the single ingestion path for inbound broker messages: ring
// append, hub broadcast, state mirror, durable record, in that order. The
// broker client invokes it synchronously per delivery, so everything here
// runs on one goroutine and in delivery order.
type Pipeline struct {
	ring     *history.Ring
	hub      registry.Hubber
	mirror   hotstate.Mirror
	recorder Recorder
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func NewPipeline(
	ring *history.Ring,
	hub registry.Hubber,
	mirror hotstate.Mirror,
	recorder Recorder,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		ring:     ring,
		hub:      hub,
		mirror:   mirror,
		recorder: recorder,
		metrics:  metrics,
		logger:   logger,
	}
}

// Ingest runs one raw delivery through the pipeline. The message reaches the
// ring and every live subscriber before persistence is attempted, so a
// storage failure can only ever cost the durable copy; it is logged and
// absorbed here, never propagated back into the broker client's loop.
func (p *Pipeline) Ingest(topic, payload string) {
	ctx := context.Background()

	msg := p.ring.Append(topic, payload, time.Now())
	p.metrics.MessageIngested(ctx, topic)

	p.hub.Broadcast(msg)
	p.metrics.MessageBroadcast(ctx)

	if err := p.mirror.Record(ctx, topic, payload); err != nil {
		p.logger.Warn("state mirror update failed",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}

	if err := p.recorder.Record(ctx, msg); err != nil {
		p.logger.Error("event persist failed, ingestion continues",
			slog.Int64("sequence_id", msg.SequenceID),
			slog.String("payload", payload),
			slog.Any("error", err),
		)
	}
}
