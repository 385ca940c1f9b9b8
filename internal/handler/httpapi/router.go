// Package httpapi serves the operator-facing HTTP surface: recent-message
// history, the two live streams, command publishing, the hot-state dump and
// the analytics endpoints.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/liftops/lift-telemetry-service/internal/adapter/hotstate"
	"github.com/liftops/lift-telemetry-service/internal/domain/history"
	"github.com/liftops/lift-telemetry-service/internal/service"
)

type Handler struct {
	ring      *history.Ring
	deliverer service.Deliverer
	commander service.Commander
	analytics service.Analytics
	mirror    hotstate.Mirror
	logger    *slog.Logger
	upgrader  websocket.Upgrader
}

func NewHandler(
	ring *history.Ring,
	deliverer service.Deliverer,
	commander service.Commander,
	analytics service.Analytics,
	mirror hotstate.Mirror,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		ring:      ring,
		deliverer: deliverer,
		commander: commander,
		analytics: analytics,
		mirror:    mirror,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Security: adjust for production
		},
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/api/messages", h.messages)
	r.Get("/api/stream", h.stream)
	r.Get("/ws", h.websocket)
	r.Post("/api/command", h.command)
	r.Get("/api/state", h.state)

	r.Route("/api/stats", func(r chi.Router) {
		r.Get("/summary", h.statsSummary)
		r.Get("/trips", h.statsTrips)
		r.Get("/trips/daily", h.statsTripsDaily)
		r.Get("/floors/passes", h.statsFloorPasses)
		r.Get("/floors/top", h.statsTopFloor)
		r.Get("/buttons", h.statsButtons)
		r.Get("/emergency", h.statsEmergency)
		r.Get("/hours", h.statsHours)
		r.Get("/connection", h.statsConnection)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
