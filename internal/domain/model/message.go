package model

import "time"

// [MESSAGE] RAW BROKER DELIVERY, PRE-CLASSIFICATION
// Created once per inbound publish; never mutated afterwards. SequenceID is
// unique and strictly increasing for the process lifetime and is assigned by
// the history ring together with the append, under the same lock.
type InboundMessage struct {
	SequenceID int64
	Topic      string
	Payload    string
	ReceivedAt time.Time
}
