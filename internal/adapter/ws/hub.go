// Package ws streams simulation events to websocket observers.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	nethttp "net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"outpost/internal/domain/entity"
	"outpost/internal/domain/survival"
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 64
)

type HubConfig struct {
	Logger *slog.Logger
}

// Hub is a notify sink that broadcasts every delivered event as JSON to the
// connected observers. Observers that fall behind are disconnected.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	filter entity.ID
	send   chan []byte
	once   sync.Once
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Handle upgrades the request. The optional entity query parameter limits
// the stream to one entity.
func (h *Hub) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	var filter entity.ID
	if raw := r.URL.Query().Get("entity"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			nethttp.Error(w, "invalid entity", nethttp.StatusBadRequest)
			return
		}
		filter = entity.ID(id)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, filter: filter, send: make(chan []byte, sendBufferSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("observer connected", "remote", r.RemoteAddr, "entity", filter)

	go h.writeLoop(c)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) Deliver(_ context.Context, event survival.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.filter != entity.Invalid && c.filter != event.Entity {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping slow observer", "remote", c.conn.RemoteAddr().String())
			h.removeLocked(c)
		}
	}
	return nil
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.once.Do(func() { close(c.send) })
}
