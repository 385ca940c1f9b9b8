/*
Package registry implements the fan-out hub for live telemetry streaming.

Every live-stream session (SSE or WebSocket) registers one Subscriber and
blocks on its delivery channel. The ingestion pipeline broadcasts each inbound
message to every subscriber registered at that moment. Delivery is decoupled
through per-subscriber unbounded queues, so a slow or abandoned consumer never
stalls ingestion of subsequent messages.
*/
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// Hubber defines the fan-out gateway used by the ingestion pipeline and the
// live-stream handlers.
type Hubber interface {
	Register() *Subscriber
	Unregister(s *Subscriber)
	Broadcast(msg model.InboundMessage)
	Len() int
	Shutdown()
}

// Interface guard
var _ Hubber = (*Hub)(nil)

// Hub is the in-memory subscriber set. [SINGLE_PROCESS] by design: the
// registry lives and dies with the process, nothing is persisted.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*Subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]*Subscriber)}
}

// Register creates a new subscriber with an empty queue and adds it to the
// active set. The caller owns the subscriber for the session lifetime and
// must Unregister it on the way out.
func (h *Hub) Register() *Subscriber {
	s := newSubscriber()
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

// Unregister removes s from the active set and stops its delivery pump.
// [IDEMPOTENT] Removing an already-removed or foreign subscriber is a no-op.
// Once Unregister returns, s.C() never yields another message; the channel is
// closed.
func (h *Hub) Unregister(s *Subscriber) {
	if s == nil {
		return
	}
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()
	s.stop()
}

// Broadcast delivers msg to every subscriber in the active set at the moment
// of the call. It never blocks on consumer pace: enqueueing is O(1) per
// subscriber and delivery happens on each subscriber's own pump.
func (h *Hub) Broadcast(msg model.InboundMessage) {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		s.push(msg)
	}
}

// Len reports the active subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Shutdown stops every subscriber pump. Run once on process stop.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uuid.UUID]*Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}
