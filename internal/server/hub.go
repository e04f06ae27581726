package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/JusCookin/IoT-Based-Automated-Rain-Responsive-Clothesline/internal/models"
)

const writeWait = 10 * time.Second

// Hub pushes each accepted report to connected dashboard clients over
// WebSocket. Clients that fall behind or error are dropped.
type Hub struct {
	upgrader       websocket.Upgrader
	logger         zerolog.Logger
	allowedOrigins []string

	mutex   sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a new live-feed hub
func NewHub(logger zerolog.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{
		logger:         logger,
		allowedOrigins: allowedOrigins,
		clients:        make(map[*websocket.Conn]struct{}),
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the incoming request's Origin against the allowlist
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	// No Origin header means same-origin request
	if origin == "" {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	h.logger.Warn().Str("origin", origin).Msg("Rejected WebSocket connection: origin not in allowlist")
	return false
}

// ServeHTTP upgrades a dashboard connection and keeps it registered until it
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	h.mutex.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mutex.Unlock()

	h.logger.Info().Int("clients", count).Msg("Dashboard client connected")

	// Clients only listen; the read loop just detects disconnects.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a report to every connected client
func (h *Hub) Broadcast(report *models.Report) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(report); err != nil {
			h.logger.Warn().Err(err).Msg("Dropping dashboard client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected dashboard clients
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn := range h.clients {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[conn]; ok {
		conn.Close()
		delete(h.clients, conn)
		h.logger.Info().Int("clients", len(h.clients)).Msg("Dashboard client disconnected")
	}
}
