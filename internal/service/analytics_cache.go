package service

import (
	"context"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// AnalyticsCache implements [DECORATOR_PATTERN] to absorb dashboard polling
// bursts without touching the query logic underneath. Entries expire after a
// short TTL; within that window every poller shares one store round trip.
type AnalyticsCache struct {
	Next  Analytics
	cache *expirable.LRU[string, any]
}

// NewAnalyticsCache creates a new read-through cache for the Analytics service.
func NewAnalyticsCache(next Analytics) Analytics {
	// [MEMORY_MANAGEMENT] Bounded LRU with a short TTL; stale reads inside
	// the window are acceptable for dashboard statistics.
	return &AnalyticsCache{
		Next:  next,
		cache: expirable.NewLRU[string, any](256, nil, 3*time.Second),
	}
}

func rangeKey(op string, rng model.Range) string {
	s, e := "-", "-"
	if rng.Start != nil {
		s = strconv.FormatInt(rng.Start.UnixMicro(), 10)
	}
	if rng.End != nil {
		e = strconv.FormatInt(rng.End.UnixMicro(), 10)
	}
	return op + ":" + s + ":" + e
}

// cached serves key from c when present, otherwise runs fetch and stores the
// result. Errors are never cached.
func cached[T any](c *expirable.LRU[string, any], key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if hit, ok := v.(T); ok {
			return hit, nil
		}
	}
	fresh, err := fetch()
	if err != nil {
		return fresh, err
	}
	c.Add(key, fresh)
	return fresh, nil
}

func (a *AnalyticsCache) TotalTrips(ctx context.Context, rng model.Range) (int, error) {
	return cached(a.cache, rangeKey("trips_total", rng), func() (int, error) {
		return a.Next.TotalTrips(ctx, rng)
	})
}

func (a *AnalyticsCache) TripsByFloor(ctx context.Context, rng model.Range) (map[int]int, error) {
	return cached(a.cache, rangeKey("trips_by_floor", rng), func() (map[int]int, error) {
		return a.Next.TripsByFloor(ctx, rng)
	})
}

func (a *AnalyticsCache) FloorPasses(ctx context.Context, rng model.Range) (map[int]int, error) {
	return cached(a.cache, rangeKey("floor_passes", rng), func() (map[int]int, error) {
		return a.Next.FloorPasses(ctx, rng)
	})
}

func (a *AnalyticsCache) ButtonPresses(ctx context.Context, rng model.Range) (model.ButtonStats, error) {
	return cached(a.cache, rangeKey("buttons", rng), func() (model.ButtonStats, error) {
		return a.Next.ButtonPresses(ctx, rng)
	})
}

func (a *AnalyticsCache) MostRequestedFloor(ctx context.Context, rng model.Range) (model.MostRequestedFloor, error) {
	return cached(a.cache, rangeKey("floor_top", rng), func() (model.MostRequestedFloor, error) {
		return a.Next.MostRequestedFloor(ctx, rng)
	})
}

func (a *AnalyticsCache) EmergencyStopCount(ctx context.Context, rng model.Range) (int, error) {
	return cached(a.cache, rangeKey("estop_count", rng), func() (int, error) {
		return a.Next.EmergencyStopCount(ctx, rng)
	})
}

func (a *AnalyticsCache) AverageEmergencyDuration(ctx context.Context, rng model.Range) (*float64, error) {
	return cached(a.cache, rangeKey("estop_avg", rng), func() (*float64, error) {
		return a.Next.AverageEmergencyDuration(ctx, rng)
	})
}

func (a *AnalyticsCache) EventsByHour(ctx context.Context, rng model.Range) (map[int]int, error) {
	return cached(a.cache, rangeKey("hours", rng), func() (map[int]int, error) {
		return a.Next.EventsByHour(ctx, rng)
	})
}

func (a *AnalyticsCache) BusiestHour(ctx context.Context, rng model.Range) (model.BusiestHour, error) {
	return cached(a.cache, rangeKey("hours_top", rng), func() (model.BusiestHour, error) {
		return a.Next.BusiestHour(ctx, rng)
	})
}

func (a *AnalyticsCache) TripsPerDay(ctx context.Context, days int) ([]model.DailyTrips, error) {
	return cached(a.cache, "trips_daily:"+strconv.Itoa(days), func() ([]model.DailyTrips, error) {
		return a.Next.TripsPerDay(ctx, days)
	})
}

func (a *AnalyticsCache) ConnectionStats(ctx context.Context, rng model.Range) (model.ConnectionStats, error) {
	return cached(a.cache, rangeKey("connection", rng), func() (model.ConnectionStats, error) {
		return a.Next.ConnectionStats(ctx, rng)
	})
}

func (a *AnalyticsCache) Summary(ctx context.Context, rng model.Range) (model.Summary, error) {
	return cached(a.cache, rangeKey("summary", rng), func() (model.Summary, error) {
		return a.Next.Summary(ctx, rng)
	})
}

var _ Analytics = (*AnalyticsCache)(nil)
