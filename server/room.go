package server

import (
	"sync"

	"drawtogether/schema"
)

// Room holds one shared canvas: an ordered element sequence, a chat log, a
// background setting and the set of connected members. The state itself
// knows nothing about networking; broadcast helpers only enqueue bytes.
type Room struct {
	ID string

	mu         sync.RWMutex
	elements   []schema.Element
	chat       []schema.ChatEntry
	background schema.Background
	clients    map[*Client]bool

	// seq serializes whole inbound events so each room-lookup, mutate,
	// broadcast sequence is atomic with respect to other events on this room.
	seq sync.Mutex
}

// NewRoom creates an empty room with the default background.
func NewRoom(id string) *Room {
	return &Room{
		ID:         id,
		elements:   make([]schema.Element, 0),
		chat:       make([]schema.ChatEntry, 0),
		background: schema.DefaultBackground,
		clients:    make(map[*Client]bool),
	}
}

// AddClient registers a member.
func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client] = true
}

// RemoveClient removes a member.
func (r *Room) RemoveClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, client)
}

// HasClient reports membership.
func (r *Room) HasClient(client *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[client]
}

// MemberIDs lists connection ids of current members.
func (r *Room) MemberIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.clients))
	for c := range r.clients {
		ids = append(ids, c.ID)
	}
	return ids
}

// AppendElement appends and returns the assigned index, which equals the
// sequence length before the append.
func (r *Room) AppendElement(el schema.Element) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := len(r.elements)
	r.elements = append(r.elements, el.Clone())
	return idx
}

// FindElement locates an element by its stable id, falling back to the
// positional index when the id is unknown. Returns a copy.
func (r *Room) FindElement(id string, index int) (schema.Element, int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id != "" {
		for i := range r.elements {
			if r.elements[i].ID == id {
				return r.elements[i].Clone(), i, true
			}
		}
	}
	if index >= 0 && index < len(r.elements) {
		return r.elements[index].Clone(), index, true
	}
	return schema.Element{}, -1, false
}

// ReplaceElement replaces in place, addressing by id first and positional
// index as fallback. No other index shifts. Returns the replaced position,
// or false when neither address resolves.
func (r *Room) ReplaceElement(id string, index int, el schema.Element) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id != "" {
		for i := range r.elements {
			if r.elements[i].ID == id {
				r.elements[i] = el.Clone()
				return i, true
			}
		}
	}
	if index >= 0 && index < len(r.elements) {
		r.elements[index] = el.Clone()
		return index, true
	}
	return -1, false
}

// ReplaceAll overwrites the whole element sequence (full synchronization).
func (r *Room) ReplaceAll(els []schema.Element) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements = schema.CloneElements(els)
	if r.elements == nil {
		r.elements = make([]schema.Element, 0)
	}
}

// Elements returns a deep copy of the element sequence.
func (r *Room) Elements() []schema.Element {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := schema.CloneElements(r.elements)
	if out == nil {
		out = make([]schema.Element, 0)
	}
	return out
}

// ElementCount returns the current sequence length.
func (r *Room) ElementCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.elements)
}

// AppendChat appends one chat entry.
func (r *Room) AppendChat(entry schema.ChatEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat = append(r.chat, entry)
}

// Chat returns a copy of the chat log.
func (r *Room) Chat() []schema.ChatEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schema.ChatEntry, len(r.chat))
	copy(out, r.chat)
	return out
}

// SetBackground sets the background.
func (r *Room) SetBackground(bg schema.Background) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.background = bg
}

// Background returns the current background.
func (r *Room) Background() schema.Background {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.background
}

// Broadcast sends a message to every member except the sender.
func (r *Room) Broadcast(msg []byte, sender *Client) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for client := range r.clients {
		if client != sender {
			client.Enqueue(msg)
		}
	}
}

// BroadcastToAll sends a message to every member including the sender.
func (r *Room) BroadcastToAll(msg []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for client := range r.clients {
		client.Enqueue(msg)
	}
}
