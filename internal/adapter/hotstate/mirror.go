// Package hotstate mirrors the latest payload per topic into a fast external
// store so co-located consumers can read current lift state without holding a
// broker subscription. The mirror is best-effort and never gates ingestion.
package hotstate

import "context"

// Mirror keeps the most recent payload per topic.
type Mirror interface {
	// Record overwrites the stored payload for topic.
	Record(ctx context.Context, topic, payload string) error
	// Dump returns the latest known payload per topic.
	Dump(ctx context.Context) (map[string]string, error)
	// Enabled reports whether a backing store is configured. Handlers use
	// it to distinguish "mirror off" from "mirror empty".
	Enabled() bool
}

// Disabled is the no-op mirror used when no Redis address is configured.
type Disabled struct{}

func (Disabled) Record(context.Context, string, string) error { return nil }

func (Disabled) Dump(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (Disabled) Enabled() bool { return false }

var _ Mirror = Disabled{}
