package server

import (
	"sync"
)

// Hub is the room registry. It is created explicitly at process start and
// injected wherever rooms are needed; rooms live for the hub's lifetime and
// are never destroyed.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	metrics *Metrics
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]*Room),
		metrics: &Metrics{},
	}
}

// EnsureRoom returns the room for id, creating it on first use. Idempotent.
func (h *Hub) EnsureRoom(id string) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[id]; ok {
		return room
	}
	room := NewRoom(id)
	h.rooms[id] = room
	Log.Infof("room %s created", id)
	return room
}

// GetRoom returns the room for id if it already exists.
func (h *Hub) GetRoom(id string) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[id]
	return room, ok
}

// Metrics returns the hub's counters.
func (h *Hub) Metrics() *Metrics {
	return h.metrics
}

// RoomIDs lists the known rooms, for the metrics endpoint.
func (h *Hub) RoomIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	return ids
}
