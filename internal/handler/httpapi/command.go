package httpapi

import (
	"encoding/json"
	"net/http"
)

type commandRequest struct {
	Payload string `json:"payload"`
	Topic   string `json:"topic"`
}

// command forwards an operator command to the broker. A publish failure is a
// result, not a transport error: the response is 200 with status "failed".
func (h *Handler) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Payload == "" {
		writeError(w, http.StatusBadRequest, "payload is required")
		return
	}

	res := h.commander.Send(r.Context(), req.Topic, req.Payload)
	writeJSON(w, http.StatusOK, res)
}
