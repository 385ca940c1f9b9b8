package registry

import (
	"testing"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

func msg(seq int64, payload string) model.InboundMessage {
	return model.InboundMessage{
		SequenceID: seq,
		Topic:      "lift/controller/events",
		Payload:    payload,
		ReceivedAt: time.Now().UTC(),
	}
}

func recvOne(t *testing.T, s *Subscriber) model.InboundMessage {
	t.Helper()
	select {
	case m, ok := <-s.C():
		if !ok {
			t.Fatal("delivery channel closed while a message was expected")
		}
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}
	return model.InboundMessage{}
}

func assertNoDelivery(t *testing.T, s *Subscriber) {
	t.Helper()
	select {
	case m, ok := <-s.C():
		if ok {
			t.Fatalf("unexpected delivery: %+v", m)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesAllSubscribersExactlyOnce(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	const k = 5
	subs := make([]*Subscriber, k)
	for i := range subs {
		subs[i] = h.Register()
	}
	if h.Len() != k {
		t.Fatalf("Len() = %d, want %d", h.Len(), k)
	}

	h.Broadcast(msg(1, "cabin_button_1"))
	for i, s := range subs {
		got := recvOne(t, s)
		if got.SequenceID != 1 || got.Payload != "cabin_button_1" {
			t.Fatalf("subscriber %d got %+v", i, got)
		}
	}
	// Exactly once: nothing further is pending on any channel.
	for i, s := range subs {
		select {
		case m := <-s.C():
			t.Fatalf("subscriber %d got duplicate %+v", i, m)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestUnregisteredSubscriberReceivesNothing(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	s := h.Register()
	h.Unregister(s)
	h.Broadcast(msg(1, "estop_activated"))

	assertNoDelivery(t, s)
	if h.Len() != 0 {
		t.Fatalf("Len() = %d after unregister", h.Len())
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	s := h.Register()
	h.Unregister(s)
	h.Unregister(s)
	h.Unregister(nil)

	if h.Len() != 0 {
		t.Fatalf("Len() = %d", h.Len())
	}
}

func TestChannelClosedAfterUnregister(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	s := h.Register()
	h.Unregister(s)

	select {
	case _, ok := <-s.C():
		if ok {
			t.Fatal("received a message after unregister returned")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after unregister")
	}
}

func TestSlowConsumerDoesNotStallBroadcast(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	stalled := h.Register() // never read until the end
	live := h.Register()

	const n = 500
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= n; i++ {
			h.Broadcast(msg(int64(i), "stopped_at_floor_1"))
		}
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("broadcast stalled on a slow consumer")
	}

	// The live consumer sees every message in order.
	for i := 1; i <= n; i++ {
		got := recvOne(t, live)
		if got.SequenceID != int64(i) {
			t.Fatalf("live consumer got seq %d, want %d", got.SequenceID, i)
		}
	}

	// The stalled consumer's queue kept everything; drain it now.
	for i := 1; i <= n; i++ {
		got := recvOne(t, stalled)
		if got.SequenceID != int64(i) {
			t.Fatalf("stalled consumer got seq %d, want %d", got.SequenceID, i)
		}
	}
}

func TestShutdownStopsAllSubscribers(t *testing.T) {
	h := NewHub()

	subs := []*Subscriber{h.Register(), h.Register(), h.Register()}
	h.Shutdown()

	if h.Len() != 0 {
		t.Fatalf("Len() = %d after shutdown", h.Len())
	}
	for i, s := range subs {
		select {
		case _, ok := <-s.C():
			if ok {
				t.Fatalf("subscriber %d received after shutdown", i)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d channel not closed", i)
		}
	}
}

func TestSubscriberIDsAreUnique(t *testing.T) {
	h := NewHub()
	t.Cleanup(h.Shutdown)

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		s := h.Register()
		id := s.ID().String()
		if seen[id] {
			t.Fatalf("duplicate subscriber id %s", id)
		}
		seen[id] = true
	}
}
