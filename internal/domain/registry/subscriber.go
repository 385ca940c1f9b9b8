package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// Subscriber is one live-stream session's delivery endpoint. Messages are
// enqueued by the hub without blocking and drained by a dedicated pump
// goroutine into the channel returned by C, which the consumer blocks on.
type Subscriber struct {
	id uuid.UUID

	mu    sync.Mutex
	queue []model.InboundMessage

	wake     chan struct{} // cap 1, coalesced enqueue signal
	done     chan struct{}
	out      chan model.InboundMessage
	pumpExit chan struct{}
	stopOnce sync.Once
}

func newSubscriber() *Subscriber {
	s := &Subscriber{
		id:       uuid.New(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		out:      make(chan model.InboundMessage),
		pumpExit: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Subscriber) ID() uuid.UUID { return s.id }

// C is the delivery channel. It is closed when the subscriber is
// unregistered; consumers should range over it or select with their own
// cancellation.
func (s *Subscriber) C() <-chan model.InboundMessage { return s.out }

// push enqueues without ever blocking the broadcaster. Messages pushed after
// stop are dropped.
func (s *Subscriber) push(m model.InboundMessage) {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
	}
	s.queue = append(s.queue, m)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscriber) next() (model.InboundMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		// Release the backing array once drained.
		s.queue = nil
		return model.InboundMessage{}, false
	}
	m := s.queue[0]
	s.queue = s.queue[1:]
	return m, true
}

// pump moves queued messages into the out channel one at a time. It is the
// sole closer of out, so a consumer read after shutdown sees a closed
// channel, never a stray message.
func (s *Subscriber) pump() {
	defer close(s.pumpExit)
	defer close(s.out)
	for {
		m, ok := s.next()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- m:
		case <-s.done:
			return
		}
	}
}

// stop terminates the pump and waits for it to exit, so that once stop
// returns no further delivery can happen. Safe to call more than once.
func (s *Subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.pumpExit

	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}
