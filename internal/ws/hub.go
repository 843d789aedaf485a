package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// writeWait bounds every frame write, so a stalled socket cannot hold up a
// broadcast.
var writeWait = 10 * time.Second

type message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(value)
}

func (c *client) ping(deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, deadline)
}

// Hub tracks connected dashboards. Clients that fail a write are closed and
// dropped.
type Hub struct {
	logger *zap.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{logger: logger, clients: make(map[*client]struct{})}
}

func (h *Hub) subscribe(c *client) (unsubscribe func()) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(msgType string, data any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	msg := message{Type: msgType, Data: data}
	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			_ = c.conn.Close()
			h.mu.Lock()
			delete(h.clients, c)
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("dropped websocket client", zap.Error(err))
			}
		}
	}
}
