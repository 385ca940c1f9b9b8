package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// websocket serves the live message feed over a WebSocket session: one write
// pump sending each broadcast as a JSON text frame, and a reader goroutine
// whose only job is noticing the peer going away.
func (h *Handler) websocket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", slog.Any("error", err))
		return
	}
	defer ws.Close()

	sub := h.deliverer.Subscribe(r.Context())
	defer h.deliverer.Unsubscribe(r.Context(), sub)

	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-peerGone:
			return
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			data, err := json.Marshal(toWire(msg))
			if err != nil {
				h.logger.Error("marshal ws message", slog.Any("error", err))
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Warn("ws send failed", slog.Any("error", err))
				return
			}
		}
	}
}
