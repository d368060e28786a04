package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/c360/semhome/event"
)

const (
	writeWait      = 5 * time.Second
	clientBacklog  = 64
	subscriberName = "websocket"
)

// Hub fans derived events out to websocket clients. It implements
// tracker.Subscriber; a client too slow to keep up with its backlog is
// disconnected rather than allowed to stall the pipeline.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
	closed  bool
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]chan []byte),
	}
}

// Name implements tracker.Subscriber.
func (h *Hub) Name() string { return subscriberName }

// HandleEvent queues the event for every connected client.
func (h *Hub) HandleEvent(evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Client backlog full; drop the client, not the pipeline.
			h.logger.Warn("websocket client too slow, disconnecting", "remote", conn.RemoteAddr())
			delete(h.clients, conn)
			close(ch)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan []byte, clientBacklog)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[conn] = ch
	h.mu.Unlock()

	h.logger.Info("websocket client connected", "remote", conn.RemoteAddr())

	go h.readLoop(conn)
	h.writeLoop(conn, ch)
}

// readLoop discards client messages; it exists to notice disconnects.
func (h *Hub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(conn)
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, ch chan []byte) {
	defer func() {
		h.remove(conn)
		_ = conn.Close()
	}()

	for data := range ch {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(ch)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, ch := range h.clients {
		delete(h.clients, conn)
		close(ch)
		_ = conn.Close()
	}
}
