// Package client implements the participant side of the room protocol: a
// local mirror of one room's state, echo suppression for self-originated
// syncs, rate-limited coalescing of high-frequency edits, and the
// single-writer physics loop for embedded ping-pong games.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"drawtogether/games"
	"drawtogether/schema"
)

// syncSuppressWindow is how long incoming whole-array syncs are discarded
// after a local edit or an emitted sync of our own; long enough for the
// round trip back, and for a join-reply snapshot taken before the edit.
const syncSuppressWindow = 500 * time.Millisecond

var ErrElementNotFound = errors.New("client: element not found")

// Emitter sends outbound events toward the server.
type Emitter interface {
	Emit(env schema.Envelope) error
}

// Mirror is the local copy of one room. Inbound events merge into it via
// Apply; local edits mutate it optimistically and emit the matching event.
type Mirror struct {
	room   string
	userID string
	em     Emitter

	mu         sync.Mutex
	elements   []schema.Element
	chat       []schema.ChatEntry
	background schema.Background
	members    map[string]bool
	lasers     []activeLaser

	suppressUntil time.Time
	now           func() time.Time

	syncThrottle    *Throttle
	paddleThrottles map[string]*Throttle
}

// NewMirror creates an empty mirror for the given room.
func NewMirror(room, userID string, em Emitter) *Mirror {
	m := &Mirror{
		room:            room,
		userID:          userID,
		em:              em,
		background:      schema.DefaultBackground,
		members:         make(map[string]bool),
		paddleThrottles: make(map[string]*Throttle),
		now:             time.Now,
	}
	m.syncThrottle = NewThrottle(SyncInterval, func() { _ = m.EmitFullSync() })
	return m
}

// UserID returns this participant's connection id.
func (m *Mirror) UserID() string { return m.userID }

// Join announces the room to the server; the reply arrives as canvas_data,
// chat_history and background_updated events through Apply.
func (m *Mirror) Join() error {
	env, err := schema.NewEnvelope(schema.EventJoinRoom, m.room, nil)
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// Close stops the pending throttles.
func (m *Mirror) Close() {
	m.syncThrottle.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.paddleThrottles {
		t.Stop()
	}
}

// Apply merges one inbound event into the mirror. Events for other rooms
// and unknown event types are ignored with an error so callers can log.
func (m *Mirror) Apply(env schema.Envelope) error {
	if env.Room != "" && env.Room != m.room {
		return nil
	}
	switch env.Type {
	case schema.EventCanvasData:
		var p schema.CanvasDataPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.now().Before(m.suppressUntil) {
			// A reflection of our own just-sent sync, or a join snapshot the
			// server took before our optimistic edits reached it; applying it
			// would overwrite newer local state with a stale array.
			return nil
		}
		m.elements = schema.CloneElements(p.Elements)
		return nil

	case schema.EventElementReceived:
		var p schema.NewElementPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.elements = append(m.elements, p.Element.Clone())
		return nil

	case schema.EventChatHistory:
		var p schema.ChatHistoryPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.chat = append([]schema.ChatEntry(nil), p.Entries...)
		return nil

	case schema.EventChatReceived:
		var entry schema.ChatEntry
		if err := json.Unmarshal(env.Data, &entry); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.chat = append(m.chat, entry)
		return nil

	case schema.EventBackgroundUpdated:
		var p schema.BackgroundPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		m.background = p.Background
		return nil

	case schema.EventLaserReceived:
		var p schema.Laser
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.addLaser(p)
		return nil

	case schema.EventGameMoveReceived:
		var p schema.GameMovePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		return m.mergeGame(p)

	case schema.EventMemberJoined, schema.EventMemberLeft:
		var p schema.MemberPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return err
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		if env.Type == schema.EventMemberJoined {
			m.members[p.ID] = true
		} else {
			delete(m.members, p.ID)
		}
		return nil
	}
	return fmt.Errorf("client: unknown event type %q", env.Type)
}

// mergeGame overwrites the namesake game element wholesale; the sender's
// state is authoritative for everything we do not own.
func (m *Mirror) mergeGame(p schema.GameMovePayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOfLocked(p.ElementID, p.GameIndex)
	if i < 0 {
		return ErrElementNotFound
	}
	if m.elements[i].Type != schema.TypeGame {
		return fmt.Errorf("client: game update targets %q element", m.elements[i].Type)
	}
	m.elements[i] = p.Game.Clone()
	return nil
}

// indexOfLocked resolves an element address: stable id first, position as
// fallback. Caller holds mu.
func (m *Mirror) indexOfLocked(id string, index int) int {
	if id != "" {
		for i := range m.elements {
			if m.elements[i].ID == id {
				return i
			}
		}
	}
	if index >= 0 && index < len(m.elements) {
		return index
	}
	return -1
}

// markLocalEditLocked raises the suppression window after an optimistic
// local mutation, so a stale whole-array sync cannot undo it. Caller holds
// mu.
func (m *Mirror) markLocalEditLocked() {
	m.suppressUntil = m.now().Add(syncSuppressWindow)
}

// AddElement appends locally and emits new_element.
func (m *Mirror) AddElement(el schema.Element) error {
	if el.ID == "" {
		el.ID = schema.NewID()
	}
	if err := el.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.elements = append(m.elements, el.Clone())
	m.markLocalEditLocked()
	m.mu.Unlock()

	env, err := schema.NewEnvelope(schema.EventNewElement, m.room, schema.NewElementPayload{Element: el})
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// ReplaceElement swaps an element in place locally (draft stroke to
// recognized shape) and reconciles everyone else through a full sync.
func (m *Mirror) ReplaceElement(id string, el schema.Element) error {
	el.ID = id
	if err := el.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 {
		m.mu.Unlock()
		return ErrElementNotFound
	}
	m.elements[i] = el.Clone()
	m.mu.Unlock()
	return m.EmitFullSync()
}

// DeleteElement filters an element out locally and reconciles through a
// full sync; there is no dedicated delete event.
func (m *Mirror) DeleteElement(id string) error {
	m.mu.Lock()
	kept := m.elements[:0]
	found := false
	for _, el := range m.elements {
		if el.ID == id {
			found = true
			continue
		}
		kept = append(kept, el)
	}
	m.elements = kept
	m.mu.Unlock()
	if !found {
		return ErrElementNotFound
	}
	return m.EmitFullSync()
}

// EmitFullSync raises the echo-suppression window and pushes the whole
// element sequence.
func (m *Mirror) EmitFullSync() error {
	m.mu.Lock()
	m.markLocalEditLocked()
	els := schema.CloneElements(m.elements)
	m.mu.Unlock()

	env, err := schema.NewEnvelope(schema.EventFullSync, m.room, schema.FullSyncPayload{Elements: els})
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// MoveImage drags an image locally; outbound syncs are coalesced to at most
// one per throttle window.
func (m *Mirror) MoveImage(id string, x, y float64) error {
	return m.mutateImage(id, func(img *schema.Image) {
		img.X, img.Y = x, y
	})
}

// ResizeImage resizes an image locally with the same coalescing.
func (m *Mirror) ResizeImage(id string, width, height float64) error {
	return m.mutateImage(id, func(img *schema.Image) {
		img.Width, img.Height = width, height
	})
}

func (m *Mirror) mutateImage(id string, f func(*schema.Image)) error {
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 || m.elements[i].Type != schema.TypeImage || m.elements[i].Image == nil {
		m.mu.Unlock()
		return ErrElementNotFound
	}
	f(m.elements[i].Image)
	m.markLocalEditLocked()
	m.mu.Unlock()
	m.syncThrottle.Trigger()
	return nil
}

// SendChat emits a chat message; the stored entry comes back to other
// members with the server's sender id and timestamp.
func (m *Mirror) SendChat(text string) error {
	env, err := schema.NewEnvelope(schema.EventChatMessage, m.room, schema.ChatMessagePayload{Text: text})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.chat = append(m.chat, schema.ChatEntry{
		Text:      text,
		SenderID:  m.userID,
		Timestamp: m.now().UnixMilli(),
	})
	m.mu.Unlock()
	return m.em.Emit(env)
}

// SendLaser relays an ephemeral pointer stroke. It is never added to the
// element sequence on any side.
func (m *Mirror) SendLaser(laser schema.Laser) error {
	env, err := schema.NewEnvelope(schema.EventLaserPointer, m.room, laser)
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// SetBackground applies and emits a background change.
func (m *Mirror) SetBackground(bg schema.Background) error {
	if !bg.Valid() {
		return fmt.Errorf("client: unknown background %q", bg)
	}
	m.mu.Lock()
	m.background = bg
	m.mu.Unlock()
	env, err := schema.NewEnvelope(schema.EventBackgroundChange, m.room, schema.BackgroundPayload{Background: bg})
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// Elements returns a deep copy of the local element sequence.
func (m *Mirror) Elements() []schema.Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	return schema.CloneElements(m.elements)
}

// Chat returns a copy of the local chat log.
func (m *Mirror) Chat() []schema.ChatEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.ChatEntry, len(m.chat))
	copy(out, m.chat)
	return out
}

// Background returns the local background.
func (m *Mirror) Background() schema.Background {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.background
}

// Members returns ids of other members seen joining this room.
func (m *Mirror) Members() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.members))
	for id := range m.members {
		out = append(out, id)
	}
	return out
}

// emitGameMove pushes one game element's current local state.
func (m *Mirror) emitGameMove(index int, el schema.Element) error {
	env, err := schema.NewEnvelope(schema.EventGameMove, m.room, schema.GameMovePayload{
		GameIndex: index,
		ElementID: el.ID,
		Game:      el,
	})
	if err != nil {
		return err
	}
	return m.em.Emit(env)
}

// ClaimMark claims the X or O seat for this participant, first-writer-wins,
// and pushes the claim. PlayTicTacToe claims implicitly; this is for showing
// the pairing before the first move.
func (m *Mirror) ClaimMark(id, mark string) error {
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 || m.elements[i].Type != schema.TypeGame ||
		m.elements[i].Game == nil || m.elements[i].Game.TicTacToe == nil {
		m.mu.Unlock()
		return ErrElementNotFound
	}
	if !games.ClaimMark(m.elements[i].Game.TicTacToe, mark, m.userID) {
		m.mu.Unlock()
		return games.ErrMarkTaken
	}
	m.markLocalEditLocked()
	el := m.elements[i].Clone()
	m.mu.Unlock()
	return m.emitGameMove(i, el)
}

// PlayTicTacToe places the current mark at cell; the first move for an
// unclaimed mark claims its seat. A rejected move changes nothing and emits
// nothing.
func (m *Mirror) PlayTicTacToe(id string, cell int) error {
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 || m.elements[i].Type != schema.TypeGame ||
		m.elements[i].Game == nil || m.elements[i].Game.TicTacToe == nil {
		m.mu.Unlock()
		return ErrElementNotFound
	}
	g := m.elements[i].Game.TicTacToe
	if err := games.ApplyMove(g, cell, m.userID); err != nil {
		m.mu.Unlock()
		return err
	}
	m.markLocalEditLocked()
	el := m.elements[i].Clone()
	m.mu.Unlock()
	return m.emitGameMove(i, el)
}

// ResetTicTacToe starts a rematch on a finished board.
func (m *Mirror) ResetTicTacToe(id string) error {
	m.mu.Lock()
	i := m.indexOfLocked(id, -1)
	if i < 0 || m.elements[i].Type != schema.TypeGame ||
		m.elements[i].Game == nil || m.elements[i].Game.TicTacToe == nil {
		m.mu.Unlock()
		return ErrElementNotFound
	}
	games.Reset(m.elements[i].Game.TicTacToe)
	m.markLocalEditLocked()
	el := m.elements[i].Clone()
	m.mu.Unlock()
	return m.emitGameMove(i, el)
}
