package httpapi

import (
	"log/slog"
	"net/http"
)

// state dumps the hot-state mirror: the latest payload per topic.
func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	if !h.mirror.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "state mirror disabled")
		return
	}

	dump, err := h.mirror.Dump(r.Context())
	if err != nil {
		h.logger.Error("state mirror dump failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "state mirror unavailable")
		return
	}
	writeJSON(w, http.StatusOK, dump)
}
