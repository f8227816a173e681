package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"drawtogether/schema"
)

const (
	// maxMessageSize admits inline image payloads carried as data URLs.
	maxMessageSize = 100 << 20 // 100 MB

	sendQueueSize = 256
	writeWait     = 10 * time.Second
)

// Client represents one connected participant. A client may join any number
// of rooms over its lifetime; the rooms map is the connection side of the
// membership registry.
type Client struct {
	ID   string
	conn *websocket.Conn
	hub  *Hub

	send   chan []byte
	closed bool
	mu     sync.Mutex

	roomsMu sync.Mutex
	rooms   map[*Room]bool
}

// NewClient wraps an upgraded connection.
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:    id,
		conn:  conn,
		hub:   hub,
		send:  make(chan []byte, sendQueueSize),
		rooms: make(map[*Room]bool),
	}
}

// Enqueue queues a message for delivery without blocking; a full queue drops
// the message so a slow reader cannot stall the room.
func (c *Client) Enqueue(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		Log.Warnf("client %s send queue full, dropping message", c.ID)
	}
}

// SendEnvelope marshals and queues one envelope.
func (c *Client) SendEnvelope(env schema.Envelope) {
	msg, err := json.Marshal(env)
	if err != nil {
		Log.Errorf("client %s: marshal %s: %v", c.ID, env.Type, err)
		return
	}
	c.Enqueue(msg)
}

// joinRoom records two-way membership.
func (c *Client) joinRoom(room *Room) {
	c.roomsMu.Lock()
	c.rooms[room] = true
	c.roomsMu.Unlock()
	room.AddClient(c)
}

// leaveAll removes the client from every joined room and tells the remaining
// members. Called once when the connection ends.
func (c *Client) leaveAll() {
	c.roomsMu.Lock()
	rooms := make([]*Room, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.rooms = make(map[*Room]bool)
	c.roomsMu.Unlock()

	for _, room := range rooms {
		room.RemoveClient(c)
		if env, err := schema.NewEnvelope(schema.EventMemberLeft, room.ID, schema.MemberPayload{ID: c.ID}); err == nil {
			env.Sender = c.ID
			if msg, err := json.Marshal(env); err == nil {
				room.Broadcast(msg, c)
			}
		}
		Log.Infof("client %s left room %s", c.ID, room.ID)
	}
}

// writePump drains the send queue onto the wire. One per connection.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump reads inbound events and hands them to the hub's router. Events
// from one connection are processed here sequentially, preserving the
// per-connection emission order.
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
		c.conn.Close()
		c.leaveAll()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				Log.Warnf("client %s read: %v", c.ID, err)
			}
			return
		}
		c.hub.Route(c, msg)
	}
}
