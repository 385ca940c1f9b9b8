package hotstate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "state:"

// RedisMirror stores the latest payload per topic under state:<topic>. Every
// write refreshes the TTL, so topics that stop publishing age out on their
// own instead of lingering as stale state.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMirror(client *redis.Client, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl}
}

func (m *RedisMirror) Record(ctx context.Context, topic, payload string) error {
	if err := m.client.Set(ctx, keyPrefix+topic, payload, m.ttl).Err(); err != nil {
		return fmt.Errorf("mirror set %q: %w", topic, err)
	}
	return nil
}

// Dump walks the mirror keyspace with SCAN and fetches the values in a single
// MGET. Keys that expire between the two calls are skipped.
func (m *RedisMirror) Dump(ctx context.Context) (map[string]string, error) {
	var keys []string
	iter := m.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("mirror scan: %w", err)
	}

	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := m.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mirror mget: %w", err)
	}
	for i, key := range keys {
		if s, ok := vals[i].(string); ok {
			out[strings.TrimPrefix(key, keyPrefix)] = s
		}
	}
	return out, nil
}

func (m *RedisMirror) Enabled() bool { return true }

var _ Mirror = (*RedisMirror)(nil)
