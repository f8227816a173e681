package client

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"drawtogether/schema"
)

// Conn is a websocket transport implementing Emitter. One Conn can carry
// several mirrors; inbound events are routed to every registered mirror,
// each of which ignores rooms that are not its own.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex

	mirrorsMu sync.Mutex
	mirrors   []*Mirror
}

// Dial connects to a server's websocket endpoint.
func Dial(url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	ws.SetReadLimit(100 << 20)
	return &Conn{ws: ws}, nil
}

// Emit sends one envelope.
func (c *Conn) Emit(env schema.Envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(env)
}

// Attach registers a mirror for inbound routing.
func (c *Conn) Attach(m *Mirror) {
	c.mirrorsMu.Lock()
	defer c.mirrorsMu.Unlock()
	c.mirrors = append(c.mirrors, m)
}

// Listen reads inbound events until the connection closes, applying each to
// the attached mirrors. Run it in its own goroutine.
func (c *Conn) Listen() error {
	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			return err
		}
		var env schema.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			continue
		}
		c.mirrorsMu.Lock()
		mirrors := append([]*Mirror(nil), c.mirrors...)
		c.mirrorsMu.Unlock()
		for _, m := range mirrors {
			_ = m.Apply(env)
		}
	}
}

// Close shuts the transport down.
func (c *Conn) Close() error {
	return c.ws.Close()
}
