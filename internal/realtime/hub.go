// Package realtime fans data changes and toasts out to connected SSE and
// websocket clients.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/notify"
)

// Event types.
const (
	TypeConnected = "connected"
	TypeData      = "data"
	TypeToast     = "toast"
)

// ClientBuffer is the number of events a client may lag behind before
// events are dropped for it.
const ClientBuffer = 64

// Event is one message pushed to clients.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client is one connection.
type Client struct {
	ID     string
	Events chan Event
}

// Hub keeps the connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	last    *Event
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{clients: make(map[string]*Client), log: log.Named("realtime")}
}

// Register adds a client. The last data event, if any, is queued first so a
// new client starts from the current state.
func (h *Hub) Register() *Client {
	c := &Client{ID: uuid.NewString(), Events: make(chan Event, ClientBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	if h.last != nil {
		c.Events <- *h.last
	}
	h.log.Debug("client registered", zap.String("client", c.ID), zap.Int("total", len(h.clients)))
	return c
}

// Unregister removes a client and closes its channel. Unknown ids are
// ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.Events)
		delete(h.clients, id)
		h.log.Debug("client unregistered", zap.String("client", id), zap.Int("total", len(h.clients)))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues e for every client; full clients skip it.
func (h *Hub) Broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if e.Type == TypeData {
		h.last = &e
	}
	for _, c := range h.clients {
		select {
		case c.Events <- e:
		default:
			h.log.Warn("client buffer full, skipping event", zap.String("client", c.ID), zap.String("type", e.Type))
		}
	}
}

// Publish encodes v and broadcasts it under typ.
func (h *Hub) Publish(typ string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", typ, err)
	}
	h.Broadcast(Event{Type: typ, Data: body})
	return nil
}

// BroadcastToast makes the hub a notify.Broadcaster.
func (h *Hub) BroadcastToast(t notify.Toast) {
	if err := h.Publish(TypeToast, t); err != nil {
		h.log.Warn("toast not broadcast", zap.Error(err))
	}
}
