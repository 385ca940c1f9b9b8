package model

import "time"

// EventType is one row of the fixed, pre-seeded event-name catalog.
type EventType struct {
	ID   int64
	Name string
}

// [EVENT] DURABLE RECORD OF ONE CLASSIFIED PAYLOAD
// Append-only; TypeID always references a seeded catalog row. Floor is set
// only for payload families whose name encodes a floor.
type Event struct {
	ID         int64
	TypeID     int64
	TypeName   string
	OccurredAt time.Time
	Floor      *int
}
