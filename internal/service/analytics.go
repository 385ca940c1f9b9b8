package service

import (
	"context"
	"math"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/liftops/lift-telemetry-service/internal/domain/catalog"
	"github.com/liftops/lift-telemetry-service/internal/domain/model"
	"github.com/liftops/lift-telemetry-service/internal/storage"
)

// Analytics answers read-side queries over the durable event log. All
// methods are stateless, hold no locks and tolerate concurrent writes.
// Missing data resolves to zero counts or nil optionals, never an error.
type Analytics interface {
	TotalTrips(ctx context.Context, rng model.Range) (int, error)
	TripsByFloor(ctx context.Context, rng model.Range) (map[int]int, error)
	FloorPasses(ctx context.Context, rng model.Range) (map[int]int, error)
	ButtonPresses(ctx context.Context, rng model.Range) (model.ButtonStats, error)
	MostRequestedFloor(ctx context.Context, rng model.Range) (model.MostRequestedFloor, error)
	EmergencyStopCount(ctx context.Context, rng model.Range) (int, error)
	AverageEmergencyDuration(ctx context.Context, rng model.Range) (*float64, error)
	EventsByHour(ctx context.Context, rng model.Range) (map[int]int, error)
	BusiestHour(ctx context.Context, rng model.Range) (model.BusiestHour, error)
	TripsPerDay(ctx context.Context, days int) ([]model.DailyTrips, error)
	ConnectionStats(ctx context.Context, rng model.Range) (model.ConnectionStats, error)
	Summary(ctx context.Context, rng model.Range) (model.Summary, error)
}

type AnalyticsService struct {
	store  storage.Store
	tracer trace.Tracer
	now    func() time.Time
}

func NewAnalyticsService(store storage.Store) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		tracer: otel.Tracer("lift-telemetry-service"),
		now:    time.Now,
	}
}

// TotalTrips counts in-cabin destination presses only. A call button is a
// pending request, not a confirmed trip.
func (s *AnalyticsService) TotalTrips(ctx context.Context, rng model.Range) (int, error) {
	return s.store.CountByTypes(ctx, catalog.TripNames(), rng)
}

func (s *AnalyticsService) TripsByFloor(ctx context.Context, rng model.Range) (map[int]int, error) {
	return s.store.CountByFloorForTypes(ctx, catalog.TripNames(), rng)
}

func (s *AnalyticsService) FloorPasses(ctx context.Context, rng model.Range) (map[int]int, error) {
	return s.store.CountByFloorForTypes(ctx, catalog.ArrivalNames(), rng)
}

func (s *AnalyticsService) ButtonPresses(ctx context.Context, rng model.Range) (model.ButtonStats, error) {
	inside, err := s.store.CountByTypes(ctx, catalog.TripNames(), rng)
	if err != nil {
		return model.ButtonStats{}, err
	}
	call, err := s.store.CountByTypes(ctx, catalog.CallNames(), rng)
	if err != nil {
		return model.ButtonStats{}, err
	}
	return model.ButtonStats{Inside: inside, Call: call, Total: inside + call}, nil
}

// MostRequestedFloor ranks floors by combined inside+call count. Ties go to
// the lowest floor number; the Floor pointer stays nil when no floor-bearing
// events exist in range.
func (s *AnalyticsService) MostRequestedFloor(ctx context.Context, rng model.Range) (model.MostRequestedFloor, error) {
	names := append(catalog.TripNames(), catalog.CallNames()...)
	byFloor, err := s.store.CountByFloorForTypes(ctx, names, rng)
	if err != nil {
		return model.MostRequestedFloor{}, err
	}
	return mostRequested(byFloor), nil
}

func mostRequested(byFloor map[int]int) model.MostRequestedFloor {
	var best model.MostRequestedFloor
	for floor, count := range byFloor {
		if best.Floor == nil || count > best.Count || (count == best.Count && floor < *best.Floor) {
			f := floor
			best = model.MostRequestedFloor{Floor: &f, Count: count}
		}
	}
	return best
}

func (s *AnalyticsService) EmergencyStopCount(ctx context.Context, rng model.Range) (int, error) {
	return s.store.CountByTypes(ctx, []string{catalog.EstopActivated}, rng)
}

// AverageEmergencyDuration pairs each activation with the first release
// strictly after it. A release may serve several activations; the pairing is
// chronological, not one-to-one.
func (s *AnalyticsService) AverageEmergencyDuration(ctx context.Context, rng model.Range) (*float64, error) {
	activations, err := s.store.TimestampsByTypes(ctx, []string{catalog.EstopActivated}, rng)
	if err != nil {
		return nil, err
	}
	releases, err := s.store.TimestampsByTypes(ctx, []string{catalog.EstopReleased}, rng)
	if err != nil {
		return nil, err
	}
	return averageEmergencyDuration(activations, releases), nil
}

// Both inputs arrive ascending per the store contract.
func averageEmergencyDuration(activations, releases []time.Time) *float64 {
	if len(activations) == 0 || len(releases) == 0 {
		return nil
	}
	var total float64
	var paired int
	for _, act := range activations {
		i := sort.Search(len(releases), func(i int) bool { return releases[i].After(act) })
		if i == len(releases) {
			continue
		}
		total += releases[i].Sub(act).Seconds()
		paired++
	}
	if paired == 0 {
		return nil
	}
	avg := total / float64(paired)
	return &avg
}

// EventsByHour builds the hour-of-day histogram over every event type.
// Timestamps are stored in UTC, so the hour is extracted in UTC too.
func (s *AnalyticsService) EventsByHour(ctx context.Context, rng model.Range) (map[int]int, error) {
	ts, err := s.store.TimestampsByTypes(ctx, nil, rng)
	if err != nil {
		return nil, err
	}
	hist := make(map[int]int)
	for _, t := range ts {
		hist[t.UTC().Hour()]++
	}
	return hist, nil
}

func (s *AnalyticsService) BusiestHour(ctx context.Context, rng model.Range) (model.BusiestHour, error) {
	hist, err := s.EventsByHour(ctx, rng)
	if err != nil {
		return model.BusiestHour{}, err
	}
	return busiestHour(hist), nil
}

// busiestHour ties break to the lowest hour; an empty histogram keeps the
// Hour pointer nil rather than defaulting to 0.
func busiestHour(hist map[int]int) model.BusiestHour {
	var best model.BusiestHour
	for hour, count := range hist {
		if best.Hour == nil || count > best.Count || (count == best.Count && hour < *best.Hour) {
			h := hour
			best = model.BusiestHour{Hour: &h, Count: count}
		}
	}
	return best
}

// TripsPerDay reports trip counts for the trailing days window ending now,
// one entry per UTC day that has at least one trip, in chronological order.
func (s *AnalyticsService) TripsPerDay(ctx context.Context, days int) ([]model.DailyTrips, error) {
	if days <= 0 {
		days = 7
	}
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	rng := model.Range{Start: &start, End: &end}

	ts, err := s.store.TimestampsByTypes(ctx, catalog.TripNames(), rng)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, t := range ts {
		counts[t.UTC().Format("2006-01-02")]++
	}
	out := make([]model.DailyTrips, 0, len(counts))
	for day, n := range counts {
		out = append(out, model.DailyTrips{Date: day, Trips: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ConnectionStats reports link health; the rate is connections over all link
// events as a percentage, two decimal places, 0 when the log has neither.
func (s *AnalyticsService) ConnectionStats(ctx context.Context, rng model.Range) (model.ConnectionStats, error) {
	conns, err := s.store.CountByTypes(ctx, []string{catalog.LinkConnected}, rng)
	if err != nil {
		return model.ConnectionStats{}, err
	}
	disc, err := s.store.CountByTypes(ctx, []string{catalog.LinkDisconnected}, rng)
	if err != nil {
		return model.ConnectionStats{}, err
	}
	stats := model.ConnectionStats{Connections: conns, Disconnections: disc}
	if total := conns + disc; total > 0 {
		stats.ConnectionRate = math.Round(float64(conns)/float64(total)*100*100) / 100
	}
	return stats, nil
}

// Summary aggregates every query into the composite dashboard payload. The
// component queries are independent, so they fan out on an errgroup; each
// goroutine fills a distinct field.
func (s *AnalyticsService) Summary(ctx context.Context, rng model.Range) (model.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.Summary")
	defer span.End()

	var out model.Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.TotalTrips(gctx, rng)
		if err != nil {
			return err
		}
		byFloor, err := s.TripsByFloor(gctx, rng)
		if err != nil {
			return err
		}
		out.Trips = model.TripStats{Total: total, ByFloor: byFloor}
		return nil
	})
	g.Go(func() error {
		buttons, err := s.ButtonPresses(gctx, rng)
		if err != nil {
			return err
		}
		out.Buttons = buttons
		return nil
	})
	g.Go(func() error {
		top, err := s.MostRequestedFloor(gctx, rng)
		if err != nil {
			return err
		}
		out.MostRequestedFloor = top
		return nil
	})
	g.Go(func() error {
		n, err := s.EmergencyStopCount(gctx, rng)
		if err != nil {
			return err
		}
		avg, err := s.AverageEmergencyDuration(gctx, rng)
		if err != nil {
			return err
		}
		out.Emergency = model.EmergencyStats{Activations: n, AvgDurationSeconds: avg}
		return nil
	})
	g.Go(func() error {
		hist, err := s.EventsByHour(gctx, rng)
		if err != nil {
			return err
		}
		out.TimeAnalysis = model.TimeStats{BusiestHour: busiestHour(hist), EventsByHour: hist}
		return nil
	})
	g.Go(func() error {
		health, err := s.ConnectionStats(gctx, rng)
		if err != nil {
			return err
		}
		out.ConnectionHealth = health
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Summary{}, err
	}
	return out, nil
}
