package docstore

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Snapshot is the full content of a collection. Docs is nil when the
// collection holds nothing.
type Snapshot struct {
	Collection string                     `json:"collection"`
	Docs       map[string]json.RawMessage `json:"docs"`
}

// Null reports an empty collection.
func (s Snapshot) Null() bool { return len(s.Docs) == 0 }

type subscriber struct {
	id     int
	events chan Snapshot
}

// hub fans snapshots out to the subscribers of each collection. Each
// subscriber holds at most one pending snapshot: a newer one replaces it.
type hub struct {
	mu   sync.RWMutex
	subs map[string]map[int]*subscriber
	next int
	log  *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{subs: map[string]map[int]*subscriber{}, log: log}
}

func (h *hub) register(collection string) *subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	s := &subscriber{id: h.next, events: make(chan Snapshot, 1)}
	if h.subs[collection] == nil {
		h.subs[collection] = map[int]*subscriber{}
	}
	h.subs[collection][s.id] = s
	h.log.Debug("subscriber registered",
		zap.String("collection", collection), zap.Int("id", s.id), zap.Int("total", len(h.subs[collection])))
	return s
}

func (h *hub) unregister(collection string, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[collection][id]; ok {
		close(s.events)
		delete(h.subs[collection], id)
		h.log.Debug("subscriber unregistered", zap.String("collection", collection), zap.Int("id", id))
	}
}

// deliver hands snap to one subscriber, dropping a pending stale snapshot.
func (h *hub) deliver(s *subscriber, snap Snapshot) {
	select {
	case s.events <- snap:
		return
	default:
	}
	select {
	case <-s.events:
	default:
	}
	select {
	case s.events <- snap:
	default:
		h.log.Warn("subscriber buffer full, skipping snapshot", zap.String("collection", snap.Collection), zap.Int("id", s.id))
	}
}

func (h *hub) broadcast(snap Snapshot) {
	// write lock: deliver may drain a channel, which must not race another
	// broadcast to the same subscriber.
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.subs[snap.Collection] {
		h.deliver(s, snap)
	}
}

// broadcastTo delivers to a single subscriber.
func (h *hub) broadcastTo(s *subscriber, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(s, snap)
}

func (h *hub) count(collection string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[collection])
}
