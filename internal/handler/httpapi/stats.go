package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/liftops/lift-telemetry-service/internal/domain/model"
)

// parseRange reads the optional start/end query parameters. Both bounds are
// inclusive; an unparseable value is the caller's error, not an open bound.
func parseRange(r *http.Request) (model.Range, error) {
	var rng model.Range
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return rng, fmt.Errorf("invalid start: %w", err)
		}
		rng.Start = &t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return rng, fmt.Errorf("invalid end: %w", err)
		}
		rng.End = &t
	}
	return rng, nil
}

// respondStat runs one range-scoped query and writes the result, sharing the
// parse/error plumbing across every stats endpoint.
func respondStat[T any](h *Handler, w http.ResponseWriter, r *http.Request, query func(context.Context, model.Range) (T, error)) {
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := query(r.Context(), rng)
	if err != nil {
		h.logger.Error("stats query failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) statsSummary(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, h.analytics.Summary)
}

func (h *Handler) statsTrips(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, func(ctx context.Context, rng model.Range) (model.TripStats, error) {
		total, err := h.analytics.TotalTrips(ctx, rng)
		if err != nil {
			return model.TripStats{}, err
		}
		byFloor, err := h.analytics.TripsByFloor(ctx, rng)
		if err != nil {
			return model.TripStats{}, err
		}
		return model.TripStats{Total: total, ByFloor: byFloor}, nil
	})
}

func (h *Handler) statsTripsDaily(w http.ResponseWriter, r *http.Request) {
	days := 7
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid days")
			return
		}
		days = n
	}

	out, err := h.analytics.TripsPerDay(r.Context(), days)
	if err != nil {
		h.logger.Error("stats query failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) statsFloorPasses(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, h.analytics.FloorPasses)
}

func (h *Handler) statsTopFloor(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, h.analytics.MostRequestedFloor)
}

func (h *Handler) statsButtons(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, h.analytics.ButtonPresses)
}

func (h *Handler) statsEmergency(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, func(ctx context.Context, rng model.Range) (model.EmergencyStats, error) {
		n, err := h.analytics.EmergencyStopCount(ctx, rng)
		if err != nil {
			return model.EmergencyStats{}, err
		}
		avg, err := h.analytics.AverageEmergencyDuration(ctx, rng)
		if err != nil {
			return model.EmergencyStats{}, err
		}
		return model.EmergencyStats{Activations: n, AvgDurationSeconds: avg}, nil
	})
}

func (h *Handler) statsHours(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, func(ctx context.Context, rng model.Range) (model.TimeStats, error) {
		hist, err := h.analytics.EventsByHour(ctx, rng)
		if err != nil {
			return model.TimeStats{}, err
		}
		busiest, err := h.analytics.BusiestHour(ctx, rng)
		if err != nil {
			return model.TimeStats{}, err
		}
		return model.TimeStats{BusiestHour: busiest, EventsByHour: hist}, nil
	})
}

func (h *Handler) statsConnection(w http.ResponseWriter, r *http.Request) {
	respondStat(h, w, r, h.analytics.ConnectionStats)
}
