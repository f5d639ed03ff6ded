// Package events broadcasts job status transitions to connected websocket
// clients. Polling remains the source of truth; the stream is advisory and a
// dropped client simply resumes by polling.
package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// JobUpdate is the wire format of one broadcast event.
type JobUpdate struct {
	Type      string    `json:"type"`
	JobID     uuid.UUID `json:"job_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans job updates out to all registered websocket connections.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Start runs the hub loop in a background goroutine.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case conn := <-h.register:
				h.mu.Lock()
				h.clients[conn] = true
				n := len(h.clients)
				h.mu.Unlock()
				slog.Debug("websocket client connected", "clients", n)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				n := len(h.clients)
				h.mu.Unlock()
				slog.Debug("websocket client disconnected", "clients", n)
			case message := <-h.broadcast:
				h.mu.Lock()
				for conn := range h.clients {
					if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			}
		}
	}()
}

// PublishJobUpdate broadcasts one job transition. Non-blocking: if the hub is
// saturated the update is dropped, since pollers will see the state anyway.
func (h *Hub) PublishJobUpdate(jobID uuid.UUID, status string, progress int, message string) {
	payload, err := json.Marshal(JobUpdate{
		Type:      "job_update",
		JobID:     jobID,
		Status:    status,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		slog.Error("marshal job update", "error", err)
		return
	}

	select {
	case h.broadcast <- payload:
	default:
	}
}

// Register adds a websocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.register <- conn
}

// Unregister removes a websocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.unregister <- conn
}
