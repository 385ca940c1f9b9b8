// Package storage defines the durable event-log contract the ingestion and
// analytics layers program against. Implementations append classified events
// and answer the typed reads the aggregator is built on; all aggregation
// logic itself lives above this interface.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// ErrUnknownEventType is returned when a write references a name missing from
// the seeded catalog. The classifier makes this unreachable in normal
// operation; hitting it means the catalog was never seeded.
var ErrUnknownEventType = errors.New("storage: unknown event type")

// Store is the append-only event log.
type Store interface {
	// SeedEventTypes inserts every name that is not already present.
	// Idempotent; never duplicates or removes existing rows.
	SeedEventTypes(ctx context.Context, names []string) error

	// AppendEvent writes one classified event in its own transaction and
	// rolls back on any failure. The type must already be seeded;
	// ErrUnknownEventType otherwise.
	AppendEvent(ctx context.Context, typeName string, at time.Time, floor *int) (model.Event, error)

	// CountByTypes counts events of the named types inside rng. An empty
	// name list counts nothing.
	CountByTypes(ctx context.Context, names []string, rng model.Range) (int, error)

	// CountByFloorForTypes groups counts by floor over the named types.
	// Rows without a floor are excluded; floors with no events are absent
	// from the map.
	CountByFloorForTypes(ctx context.Context, names []string, rng model.Range) (map[int]int, error)

	// TimestampsByTypes returns occurrence times of the named types in
	// ascending order. Unlike the count reads, an empty name list selects
	// every type.
	TimestampsByTypes(ctx context.Context, names []string, rng model.Range) ([]time.Time, error)

	Close() error
}
