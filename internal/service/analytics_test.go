package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// memStore is an in-memory stand-in for the SQL store. It honors the same
// query contract: inclusive ranges, NULL floors excluded from groupings,
// ascending timestamps, empty name list selecting all types on the timestamp
// read only.
type memStore struct {
	mu     sync.Mutex
	events []memEvent
	calls  int
	err    error
}

type memEvent struct {
	name  string
	at    time.Time
	floor *int
}

func (m *memStore) add(name string, ts time.Time, floor ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var f *int
	if len(floor) > 0 {
		v := floor[0]
		f = &v
	}
	m.events = append(m.events, memEvent{name: name, at: ts, floor: f})
}

func (m *memStore) SeedEventTypes(context.Context, []string) error { return m.err }

func (m *memStore) AppendEvent(_ context.Context, name string, at time.Time, floor *int) (model.Event, error) {
	if m.err != nil {
		return model.Event{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, memEvent{name: name, at: at, floor: floor})
	return model.Event{ID: int64(len(m.events)), TypeName: name, OccurredAt: at, Floor: floor}, nil
}

func (m *memStore) CountByTypes(_ context.Context, names []string, rng model.Range) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	set := nameSet(names)
	n := 0
	for _, e := range m.events {
		if _, ok := set[e.name]; ok && rng.Contains(e.at) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountByFloorForTypes(_ context.Context, names []string, rng model.Range) (map[int]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	set := nameSet(names)
	out := make(map[int]int)
	for _, e := range m.events {
		if _, ok := set[e.name]; ok && e.floor != nil && rng.Contains(e.at) {
			out[*e.floor]++
		}
	}
	return out, nil
}

func (m *memStore) TimestampsByTypes(_ context.Context, names []string, rng model.Range) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	set := nameSet(names)
	var out []time.Time
	for _, e := range m.events {
		if len(names) > 0 {
			if _, ok := set[e.name]; !ok {
				continue
			}
		}
		if rng.Contains(e.at) {
			out = append(out, e.at)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) queryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// at returns a UTC instant on a fixed day.
func at(hour, min, sec int) time.Time {
	return time.Date(2026, time.March, 14, hour, min, sec, 0, time.UTC)
}

// onDay returns a UTC instant on the given March day.
func onDay(day, hour int) time.Time {
	return time.Date(2026, time.March, day, hour, 0, 0, 0, time.UTC)
}

func newTestAnalytics(store *memStore) *AnalyticsService {
	svc := NewAnalyticsService(store)
	svc.now = func() time.Time { return at(12, 0, 0) }
	return svc
}

func TestTotalTripsCountsCabinButtonsOnly(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(10, 0, 0), 0)
	store.add("cabin_button_2", at(10, 5, 0), 2)
	store.add("call_button_1_up", at(10, 10, 0), 1)
	store.add("stopped_at_floor_1", at(10, 11, 0), 1)
	store.add("estop_activated", at(10, 15, 0))

	got, err := newTestAnalytics(store).TotalTrips(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("TotalTrips: %v", err)
	}
	if got != 2 {
		t.Errorf("TotalTrips = %d, want 2 (call buttons and arrivals are not trips)", got)
	}
}

func TestTripsByFloorOmitsIdleFloors(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(9, 0, 0), 0)
	store.add("cabin_button_0", at(9, 30, 0), 0)
	store.add("cabin_button_2", at(10, 0, 0), 2)
	store.add("call_button_1_up", at(10, 5, 0), 1)

	got, err := newTestAnalytics(store).TripsByFloor(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("TripsByFloor: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[2] != 1 {
		t.Errorf("TripsByFloor = %v, want map[0:2 2:1]", got)
	}
	if _, ok := got[1]; ok {
		t.Error("floor 1 present with zero trips; idle floors must be absent")
	}
}

func TestFloorPassesCountsArrivals(t *testing.T) {
	store := &memStore{}
	store.add("stopped_at_floor_0", at(9, 0, 0), 0)
	store.add("stopped_at_floor_1", at(9, 5, 0), 1)
	store.add("stopped_at_floor_1", at(9, 10, 0), 1)
	store.add("cabin_button_1", at(9, 15, 0), 1)

	got, err := newTestAnalytics(store).FloorPasses(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("FloorPasses: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("FloorPasses = %v, want map[0:1 1:2]", got)
	}
}

func TestButtonPresses(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(9, 0, 0), 0)
	store.add("cabin_button_1", at(9, 1, 0), 1)
	store.add("call_button_0_up", at(9, 2, 0), 0)
	store.add("call_button_1_down", at(9, 3, 0), 1)
	store.add("call_button_2_down", at(9, 4, 0), 2)
	store.add("stopped_at_floor_0", at(9, 5, 0), 0)

	got, err := newTestAnalytics(store).ButtonPresses(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("ButtonPresses: %v", err)
	}
	want := model.ButtonStats{Inside: 2, Call: 3, Total: 5}
	if got != want {
		t.Errorf("ButtonPresses = %+v, want %+v", got, want)
	}
}

func TestMostRequestedFloorTieBreaksLow(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_2", at(9, 0, 0), 2)
	store.add("cabin_button_2", at(9, 1, 0), 2)
	store.add("call_button_2_down", at(9, 2, 0), 2)
	store.add("cabin_button_0", at(9, 3, 0), 0)
	store.add("cabin_button_0", at(9, 4, 0), 0)
	store.add("call_button_0_up", at(9, 5, 0), 0)

	got, err := newTestAnalytics(store).MostRequestedFloor(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("MostRequestedFloor: %v", err)
	}
	if got.Floor == nil || *got.Floor != 0 || got.Count != 3 {
		t.Errorf("MostRequestedFloor = %+v, want floor 0 with count 3 (ties go low)", got)
	}
}

func TestMostRequestedFloorEmpty(t *testing.T) {
	got, err := newTestAnalytics(&memStore{}).MostRequestedFloor(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("MostRequestedFloor: %v", err)
	}
	if got.Floor != nil || got.Count != 0 {
		t.Errorf("MostRequestedFloor on empty log = %+v, want nil floor", got)
	}
}

func TestAverageEmergencyDuration(t *testing.T) {
	store := &memStore{}
	store.add("estop_activated", at(10, 0, 0))
	store.add("estop_released", at(10, 0, 5))
	store.add("estop_activated", at(11, 0, 0))
	store.add("estop_released", at(11, 0, 10))

	got, err := newTestAnalytics(store).AverageEmergencyDuration(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("AverageEmergencyDuration: %v", err)
	}
	if got == nil || *got != 7.5 {
		t.Errorf("AverageEmergencyDuration = %v, want 7.5", got)
	}
}

func TestAverageEmergencyDurationReleaseReuse(t *testing.T) {
	store := &memStore{}
	store.add("estop_activated", at(10, 0, 0))
	store.add("estop_activated", at(10, 0, 2))
	store.add("estop_released", at(10, 0, 5))

	got, err := newTestAnalytics(store).AverageEmergencyDuration(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("AverageEmergencyDuration: %v", err)
	}
	// One release closes both activations: 5s and 3s.
	if got == nil || *got != 4.0 {
		t.Errorf("AverageEmergencyDuration = %v, want 4.0", got)
	}
}

func TestAverageEmergencyDurationUnpaired(t *testing.T) {
	tests := []struct {
		name string
		seed func(*memStore)
	}{
		{"empty log", func(*memStore) {}},
		{"activation only", func(s *memStore) {
			s.add("estop_activated", at(10, 0, 0))
		}},
		{"release before activation", func(s *memStore) {
			s.add("estop_released", at(9, 0, 0))
			s.add("estop_activated", at(10, 0, 0))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			tt.seed(store)
			got, err := newTestAnalytics(store).AverageEmergencyDuration(context.Background(), model.Range{})
			if err != nil {
				t.Fatalf("AverageEmergencyDuration: %v", err)
			}
			if got != nil {
				t.Errorf("AverageEmergencyDuration = %v, want nil", *got)
			}
		})
	}
}

func TestEventsByHour(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(9, 5, 0), 0)
	store.add("stopped_at_floor_0", at(9, 59, 59), 0)
	store.add("link_connected", at(14, 30, 0))

	got, err := newTestAnalytics(store).EventsByHour(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("EventsByHour: %v", err)
	}
	if len(got) != 2 || got[9] != 2 || got[14] != 1 {
		t.Errorf("EventsByHour = %v, want map[9:2 14:1]", got)
	}
}

func TestBusiestHourEmptyLog(t *testing.T) {
	got, err := newTestAnalytics(&memStore{}).BusiestHour(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("BusiestHour: %v", err)
	}
	if got.Hour != nil {
		t.Errorf("BusiestHour on empty log = %+v, want nil hour, not 0", got)
	}
	if got.Count != 0 {
		t.Errorf("BusiestHour count = %d, want 0", got.Count)
	}
}

func TestBusiestHourTieBreaksLow(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(14, 0, 0), 0)
	store.add("cabin_button_1", at(14, 30, 0), 1)
	store.add("link_connected", at(9, 0, 0))
	store.add("link_disconnected", at(9, 30, 0))

	got, err := newTestAnalytics(store).BusiestHour(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("BusiestHour: %v", err)
	}
	if got.Hour == nil || *got.Hour != 9 || got.Count != 2 {
		t.Errorf("BusiestHour = %+v, want hour 9 with count 2", got)
	}
}

func TestTripsPerDay(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", onDay(12, 8), 0)
	store.add("cabin_button_1", onDay(12, 9), 1)
	store.add("cabin_button_2", onDay(13, 8), 2)
	store.add("cabin_button_0", onDay(14, 8), 0)
	store.add("cabin_button_0", onDay(1, 8), 0)       // outside the window
	store.add("stopped_at_floor_0", onDay(12, 10), 0) // not a trip

	got, err := newTestAnalytics(store).TripsPerDay(context.Background(), 7)
	if err != nil {
		t.Fatalf("TripsPerDay: %v", err)
	}
	want := []model.DailyTrips{
		{Date: "2026-03-12", Trips: 2},
		{Date: "2026-03-13", Trips: 1},
		{Date: "2026-03-14", Trips: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("TripsPerDay returned %d days, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("TripsPerDay[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTripsPerDayDefaultsWindow(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", onDay(13, 8), 0)

	got, err := newTestAnalytics(store).TripsPerDay(context.Background(), 0)
	if err != nil {
		t.Fatalf("TripsPerDay: %v", err)
	}
	if len(got) != 1 || got[0].Trips != 1 {
		t.Errorf("TripsPerDay with days=0 = %v, want one entry from the default window", got)
	}
}

func TestConnectionStats(t *testing.T) {
	store := &memStore{}
	store.add("link_connected", at(8, 0, 0))
	store.add("link_connected", at(9, 0, 0))
	store.add("link_connected", at(10, 0, 0))
	store.add("link_disconnected", at(11, 0, 0))

	got, err := newTestAnalytics(store).ConnectionStats(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("ConnectionStats: %v", err)
	}
	want := model.ConnectionStats{Connections: 3, Disconnections: 1, ConnectionRate: 75.0}
	if got != want {
		t.Errorf("ConnectionStats = %+v, want %+v", got, want)
	}
}

func TestConnectionStatsRounding(t *testing.T) {
	store := &memStore{}
	store.add("link_connected", at(8, 0, 0))
	store.add("link_disconnected", at(9, 0, 0))
	store.add("link_disconnected", at(10, 0, 0))

	got, err := newTestAnalytics(store).ConnectionStats(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("ConnectionStats: %v", err)
	}
	if got.ConnectionRate != 33.33 {
		t.Errorf("ConnectionRate = %v, want 33.33", got.ConnectionRate)
	}
}

func TestConnectionStatsEmpty(t *testing.T) {
	got, err := newTestAnalytics(&memStore{}).ConnectionStats(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("ConnectionStats: %v", err)
	}
	if got.ConnectionRate != 0 || got.Connections != 0 || got.Disconnections != 0 {
		t.Errorf("ConnectionStats on empty log = %+v, want zeros", got)
	}
}

func TestRangeEndpointsInclusive(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(10, 0, 0), 0)
	store.add("cabin_button_1", at(11, 0, 0), 1)
	store.add("cabin_button_2", at(11, 0, 1), 2)

	start, end := at(10, 0, 0), at(11, 0, 0)
	got, err := newTestAnalytics(store).TotalTrips(context.Background(), model.Range{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("TotalTrips: %v", err)
	}
	if got != 2 {
		t.Errorf("TotalTrips in [10:00, 11:00] = %d, want 2 (both endpoints inclusive)", got)
	}
}

func TestSummaryAggregates(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", at(9, 0, 0), 0)
	store.add("cabin_button_2", at(9, 5, 0), 2)
	store.add("call_button_1_up", at(9, 10, 0), 1)
	store.add("estop_activated", at(10, 0, 0))
	store.add("estop_released", at(10, 0, 4))
	store.add("link_connected", at(8, 0, 0))

	got, err := newTestAnalytics(store).Summary(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Trips.Total != 2 {
		t.Errorf("Trips.Total = %d, want 2", got.Trips.Total)
	}
	if got.Buttons.Total != 3 {
		t.Errorf("Buttons.Total = %d, want 3", got.Buttons.Total)
	}
	if got.Emergency.Activations != 1 {
		t.Errorf("Emergency.Activations = %d, want 1", got.Emergency.Activations)
	}
	if got.Emergency.AvgDurationSeconds == nil || *got.Emergency.AvgDurationSeconds != 4.0 {
		t.Errorf("Emergency.AvgDurationSeconds = %v, want 4.0", got.Emergency.AvgDurationSeconds)
	}
	if got.TimeAnalysis.BusiestHour.Hour == nil || *got.TimeAnalysis.BusiestHour.Hour != 9 {
		t.Errorf("BusiestHour = %+v, want hour 9", got.TimeAnalysis.BusiestHour)
	}
	if got.ConnectionHealth.Connections != 1 || got.ConnectionHealth.ConnectionRate != 100.0 {
		t.Errorf("ConnectionHealth = %+v, want 1 connection at 100.0", got.ConnectionHealth)
	}
}

func TestSummaryPropagatesStoreError(t *testing.T) {
	store := &memStore{err: context.DeadlineExceeded}
	if _, err := newTestAnalytics(store).Summary(context.Background(), model.Range{}); err == nil {
		t.Fatal("Summary swallowed the store error")
	}
}
