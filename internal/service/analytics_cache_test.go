package service

import (
	"context"
	"errors"
	"testing"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

func TestCacheServesRepeatQueries(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_1", at(10, 0, 0), 1)
	cached := NewAnalyticsCache(newTestAnalytics(store))

	for i := 0; i < 3; i++ {
		n, err := cached.TotalTrips(context.Background(), model.Range{})
		if err != nil {
			t.Fatalf("TotalTrips: %v", err)
		}
		if n != 1 {
			t.Fatalf("TotalTrips = %d, want 1", n)
		}
	}
	if got := store.queryCalls(); got != 1 {
		t.Errorf("store queried %d times for identical requests, want 1", got)
	}
}

func TestCacheKeysOnRange(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_1", at(10, 0, 0), 1)
	cached := NewAnalyticsCache(newTestAnalytics(store))

	if _, err := cached.TotalTrips(context.Background(), model.Range{}); err != nil {
		t.Fatalf("TotalTrips: %v", err)
	}
	start := at(9, 0, 0)
	if _, err := cached.TotalTrips(context.Background(), model.Range{Start: &start}); err != nil {
		t.Fatalf("TotalTrips: %v", err)
	}
	if got := store.queryCalls(); got != 2 {
		t.Errorf("store queried %d times for distinct ranges, want 2", got)
	}
}

func TestCacheNeverStoresErrors(t *testing.T) {
	store := &memStore{err: errors.New("log unavailable")}
	cached := NewAnalyticsCache(newTestAnalytics(store))

	if _, err := cached.TotalTrips(context.Background(), model.Range{}); err == nil {
		t.Fatal("expected store error to surface")
	}

	store.err = nil
	store.add("cabin_button_0", at(10, 0, 0), 0)
	n, err := cached.TotalTrips(context.Background(), model.Range{})
	if err != nil {
		t.Fatalf("TotalTrips after recovery: %v", err)
	}
	if n != 1 {
		t.Errorf("TotalTrips = %d, want 1; the earlier failure must not be cached", n)
	}
}

func TestCacheKeysTripsPerDayOnWindow(t *testing.T) {
	store := &memStore{}
	store.add("cabin_button_0", onDay(13, 8), 0)
	cached := NewAnalyticsCache(newTestAnalytics(store))

	if _, err := cached.TripsPerDay(context.Background(), 7); err != nil {
		t.Fatalf("TripsPerDay: %v", err)
	}
	if _, err := cached.TripsPerDay(context.Background(), 3); err != nil {
		t.Fatalf("TripsPerDay: %v", err)
	}
	if _, err := cached.TripsPerDay(context.Background(), 7); err != nil {
		t.Fatalf("TripsPerDay: %v", err)
	}
	if got := store.queryCalls(); got != 2 {
		t.Errorf("store queried %d times, want 2 (one per distinct window)", got)
	}
}
