package httpapi

import "net/http"

// messages serves the ring snapshot, most recent first.
func (h *Handler) messages(w http.ResponseWriter, _ *http.Request) {
	snap := h.ring.Snapshot()
	out := make([]wireMessage, 0, len(snap))
	for _, m := range snap {
		out = append(out, toWire(m))
	}
	writeJSON(w, http.StatusOK, out)
}
