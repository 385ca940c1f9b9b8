package service

import (
	"context"

	"github.com/liftops/lift-telemetry-service/internal/domain/registry"
	"github.com/liftops/lift-telemetry-service/internal/observability"
)

// [DELIVERY_SERVICE] PRIMARY INTERFACE FOR LIVE-STREAM HANDLERS (SSE/WebSocket)
type Deliverer interface {
	Subscribe(ctx context.Context) *registry.Subscriber
	Unsubscribe(ctx context.Context, sub *registry.Subscriber)
}

type DeliveryService struct {
	hub     registry.Hubber
	metrics *observability.Metrics
}

// NewDeliveryService returns the live-session lifecycle service.
func NewDeliveryService(hub registry.Hubber, metrics *observability.Metrics) *DeliveryService {
	return &DeliveryService{
		hub:     hub,
		metrics: metrics,
	}
}

// Subscribe registers a fresh subscriber for one streaming session. The
// handler owns it until Unsubscribe.
func (s *DeliveryService) Subscribe(ctx context.Context) *registry.Subscriber {
	sub := s.hub.Register()
	s.metrics.SubscriberRegistered(ctx)
	return sub
}

// Unsubscribe tears the session down; handlers call it in a deferred cleanup
// path regardless of how the session ended.
func (s *DeliveryService) Unsubscribe(ctx context.Context, sub *registry.Subscriber) {
	s.hub.Unregister(sub)
	s.metrics.SubscriberUnregistered(ctx)
}
