// Package history keeps the bounded, most-recent-first buffer of raw inbound
// messages. It is independent of persistence: every delivery lands here even
// when classification misses or the store is down.
package history

import (
	"sync"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// DefaultCapacity matches the controller dashboard's recent-message window.
const DefaultCapacity = 10

// Ring is a fixed-capacity store of the most recent inbound messages. One
// mutex guards the buffer and the monotonic sequence counter together, so
// sequence assignment and buffer state stay consistent under concurrent
// reads. Capacity never grows after construction.
type Ring struct {
	mu    sync.Mutex
	buf   []model.InboundMessage // oldest first
	limit int
	seq   int64
}

func New(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		buf:   make([]model.InboundMessage, 0, capacity),
		limit: capacity,
	}
}

// Append stamps the next sequence ID on a new message, stores it at the
// most-recent end and discards the oldest entry beyond capacity. The built
// message is returned for fan-out and persistence.
func (r *Ring) Append(topic, payload string, at time.Time) model.InboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	msg := model.InboundMessage{
		SequenceID: r.seq,
		Topic:      topic,
		Payload:    payload,
		ReceivedAt: at.UTC(),
	}
	if len(r.buf) == r.limit {
		copy(r.buf, r.buf[1:])
		r.buf[len(r.buf)-1] = msg
	} else {
		r.buf = append(r.buf, msg)
	}
	return msg
}

// Snapshot returns a copy of the buffered messages, most-recent-first. The
// copy is a consistent point-in-time view; callers may retain it freely.
func (r *Ring) Snapshot() []model.InboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.InboundMessage, len(r.buf))
	for i, m := range r.buf {
		out[len(r.buf)-1-i] = m
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

func (r *Ring) Capacity() int { return r.limit }
