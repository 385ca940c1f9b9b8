package httpapi

import (
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// wireMessage is the JSON shape of one inbound broker message, shared by the
// history endpoint and both live streams.
type wireMessage struct {
	ID        int64  `json:"id"`
	Topic     string `json:"topic"`
	Payload   string `json:"payload"`
	Timestamp string `json:"timestamp"`
}

func toWire(m model.InboundMessage) wireMessage {
	return wireMessage{
		ID:        m.SequenceID,
		Topic:     m.Topic,
		Payload:   m.Payload,
		Timestamp: m.ReceivedAt.UTC().Format(time.RFC3339Nano),
	}
}
