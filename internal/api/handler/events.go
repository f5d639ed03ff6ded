package handler

import (
	"log/slog"
	"net/http"

	"github.com/Abhi-200412/AuraMed-sub000/internal/events"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream is advisory broadcast data; no credentials cross it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewEventsHandler returns an http.HandlerFunc for GET /api/v1/events. It
// upgrades the connection and registers it with the broadcast hub; the read
// loop exists only to notice the client going away.
func NewEventsHandler(hub *events.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
			return
		}

		hub.Register(conn)
		go func() {
			defer hub.Unregister(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
