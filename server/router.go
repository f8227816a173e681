package server

import (
	"encoding/json"
	"time"

	"drawtogether/games"
	"drawtogether/schema"
)

// Route dispatches one inbound event: look the room up, mutate its state,
// fan the result out to every other member. The whole sequence runs under
// the room's event lock, so events on the same room never interleave.
//
// Policy for everything that cannot be applied (unknown room, malformed
// payload, stale target, illegal game transition): drop it, log it, count
// it. Nothing is surfaced to the sender and nothing is retried; the next
// full sync reconverges divergent mirrors.
func (h *Hub) Route(c *Client, raw []byte) {
	h.metrics.AddBytesIn(int64(len(raw)))

	var env schema.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: malformed envelope: %v", c.ID, err)
		return
	}
	env.Sender = c.ID
	h.metrics.IncEvents()

	if env.Type == schema.EventJoinRoom {
		h.handleJoin(c, env.Room)
		return
	}

	room, ok := h.GetRoom(env.Room)
	if !ok {
		// A client may legitimately race its own join; best effort only.
		h.metrics.IncUnknownRoom()
		Log.Infof("client %s: %s for unknown room %q, dropped", c.ID, env.Type, env.Room)
		return
	}

	room.seq.Lock()
	defer room.seq.Unlock()

	switch env.Type {
	case schema.EventNewElement:
		h.handleNewElement(c, room, env)
	case schema.EventFullSync:
		h.handleFullSync(c, room, env)
	case schema.EventChatMessage:
		h.handleChat(c, room, env)
	case schema.EventLaserPointer:
		h.handleLaser(c, room, env)
	case schema.EventBackgroundChange:
		h.handleBackground(c, room, env)
	case schema.EventGameMove:
		h.handleGameMove(c, room, env)
	default:
		h.metrics.IncMalformed()
		Log.Warnf("client %s: unknown event type %q", c.ID, env.Type)
	}
}

// handleJoin registers membership and replies, to the sender only, with the
// room's current elements, chat history and background.
func (h *Hub) handleJoin(c *Client, roomID string) {
	room := h.EnsureRoom(roomID)
	room.seq.Lock()
	defer room.seq.Unlock()

	c.joinRoom(room)
	Log.Infof("client %s joined room %s", c.ID, roomID)

	h.sendTo(c, room, schema.EventCanvasData, schema.CanvasDataPayload{Elements: room.Elements()})
	h.sendTo(c, room, schema.EventChatHistory, schema.ChatHistoryPayload{Entries: room.Chat()})
	h.sendTo(c, room, schema.EventBackgroundUpdated, schema.BackgroundPayload{Background: room.Background()})

	h.fanOut(c, room, schema.EventMemberJoined, schema.MemberPayload{ID: c.ID})
}

func (h *Hub) handleNewElement(c *Client, room *Room, env schema.Envelope) {
	var p schema.NewElementPayload
	if !h.decode(c, env, &p) {
		return
	}
	if p.Element.ID == "" {
		p.Element.ID = schema.NewID()
	}
	if err := p.Element.Validate(); err != nil {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: invalid element: %v", c.ID, err)
		return
	}
	idx := room.AppendElement(p.Element)
	Log.Debugf("room %s: element %s (%s) appended at %d", room.ID, p.Element.ID, p.Element.Type, idx)
	h.fanOut(c, room, schema.EventElementReceived, schema.NewElementPayload{Element: p.Element})
}

func (h *Hub) handleFullSync(c *Client, room *Room, env schema.Envelope) {
	var p schema.FullSyncPayload
	if !h.decode(c, env, &p) {
		return
	}
	for i := range p.Elements {
		if p.Elements[i].ID == "" {
			p.Elements[i].ID = schema.NewID()
		}
		if err := p.Elements[i].Validate(); err != nil {
			h.metrics.IncMalformed()
			Log.Warnf("client %s: full sync element %d invalid: %v", c.ID, i, err)
			return
		}
	}
	room.ReplaceAll(p.Elements)
	h.fanOut(c, room, schema.EventCanvasData, schema.CanvasDataPayload{Elements: p.Elements})
}

func (h *Hub) handleChat(c *Client, room *Room, env schema.Envelope) {
	var p schema.ChatMessagePayload
	if !h.decode(c, env, &p) {
		return
	}
	entry := schema.ChatEntry{
		Text:      p.Text,
		SenderID:  c.ID,
		Timestamp: time.Now().UnixMilli(),
	}
	room.AppendChat(entry)
	h.fanOut(c, room, schema.EventChatReceived, entry)
}

// handleLaser relays without storing; the stroke has no server-side copy and
// every receiver expires it locally.
func (h *Hub) handleLaser(c *Client, room *Room, env schema.Envelope) {
	var p schema.Laser
	if !h.decode(c, env, &p) {
		return
	}
	h.fanOut(c, room, schema.EventLaserReceived, p)
}

func (h *Hub) handleBackground(c *Client, room *Room, env schema.Envelope) {
	var p schema.BackgroundPayload
	if !h.decode(c, env, &p) {
		return
	}
	if !p.Background.Valid() {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: unknown background %q", c.ID, p.Background)
		return
	}
	room.SetBackground(p.Background)
	h.fanOut(c, room, schema.EventBackgroundUpdated, p)
}

// handleGameMove validates a proposed game state against the stored one and
// replaces it in place. Seat claims are compare-and-set and ball physics may
// only come from the authoritative side; anything else in the push is
// reverted or dropped.
func (h *Hub) handleGameMove(c *Client, room *Room, env schema.Envelope) {
	var p schema.GameMovePayload
	if !h.decode(c, env, &p) {
		return
	}
	current, idx, ok := room.FindElement(p.ElementID, p.GameIndex)
	if !ok {
		h.metrics.IncStaleTarget()
		Log.Warnf("room %s: game_move target id=%q index=%d not found", room.ID, p.ElementID, p.GameIndex)
		return
	}
	if current.Type != schema.TypeGame || current.Game == nil {
		h.metrics.IncStaleTarget()
		Log.Warnf("room %s: game_move target at %d is %q, not a game", room.ID, idx, current.Type)
		return
	}
	next := p.Game
	if err := next.Validate(); err != nil {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: game_move payload invalid: %v", c.ID, err)
		return
	}
	if next.Type != schema.TypeGame || next.Game.GameType != current.Game.GameType {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: game_move payload does not match target game", c.ID)
		return
	}

	stored := current.Clone()
	switch current.Game.GameType {
	case schema.GameTicTacToe:
		validated, err := games.ValidateTicTacToe(current.Game.TicTacToe, next.Game.TicTacToe, c.ID)
		if err != nil {
			h.metrics.IncInvalidGame()
			Log.Infof("room %s: tictactoe move from %s rejected: %v", room.ID, c.ID, err)
			return
		}
		stored.Game.TicTacToe = validated
	case schema.GamePingPong:
		validated, err := games.ValidatePingPong(current.Game.PingPong, next.Game.PingPong, c.ID)
		if err != nil {
			h.metrics.IncInvalidGame()
			Log.Infof("room %s: pingpong push from %s rejected: %v", room.ID, c.ID, err)
			return
		}
		stored.Game.PingPong = validated
	}

	pos, ok := room.ReplaceElement(stored.ID, idx, stored)
	if !ok {
		h.metrics.IncStaleTarget()
		return
	}
	h.fanOut(c, room, schema.EventGameMoveReceived, schema.GameMovePayload{
		GameIndex: pos,
		ElementID: stored.ID,
		Game:      stored,
	})
}

// decode unmarshals an envelope payload, counting and logging failures.
func (h *Hub) decode(c *Client, env schema.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		h.metrics.IncMalformed()
		Log.Warnf("client %s: malformed %s payload: %v", c.ID, env.Type, err)
		return false
	}
	return true
}

// sendTo addresses one envelope to the sender only.
func (h *Hub) sendTo(c *Client, room *Room, eventType string, payload any) {
	env, err := schema.NewEnvelope(eventType, room.ID, payload)
	if err != nil {
		Log.Errorf("room %s: marshal %s: %v", room.ID, eventType, err)
		return
	}
	c.SendEnvelope(env)
}

// fanOut broadcasts one envelope to every room member except the sender.
func (h *Hub) fanOut(sender *Client, room *Room, eventType string, payload any) {
	env, err := schema.NewEnvelope(eventType, room.ID, payload)
	if err != nil {
		Log.Errorf("room %s: marshal %s: %v", room.ID, eventType, err)
		return
	}
	env.Sender = sender.ID
	msg, err := json.Marshal(env)
	if err != nil {
		Log.Errorf("room %s: marshal %s envelope: %v", room.ID, eventType, err)
		return
	}
	room.Broadcast(msg, sender)
	h.metrics.IncBroadcasts()
}
