package schema

import "encoding/json"

// Event type constants for WebSocket communication.
const (
	// Client -> server.
	EventJoinRoom         = "join_room"
	EventNewElement       = "new_element"
	EventFullSync         = "full_sync"
	EventChatMessage      = "chat_message"
	EventLaserPointer     = "laser_pointer"
	EventBackgroundChange = "background_change"
	EventGameMove         = "game_move"

	// Server -> client.
	EventCanvasData        = "canvas_data"
	EventChatHistory       = "chat_history"
	EventBackgroundUpdated = "background_updated"
	EventElementReceived   = "element_received"
	EventChatReceived      = "chat_received"
	EventLaserReceived     = "laser_received"
	EventGameMoveReceived  = "game_move_received"
	EventMemberJoined      = "member_joined"
	EventMemberLeft        = "member_left"
)

// Envelope is the wrapper for all WebSocket messages. Data holds the
// event-specific payload and is decoded once the type is known.
type Envelope struct {
	Type   string          `json:"type"`
	Room   string          `json:"room,omitempty"`
	Sender string          `json:"sender,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an Envelope of the given type.
func NewEnvelope(eventType, room string, payload any) (Envelope, error) {
	env := Envelope{Type: eventType, Room: room}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Envelope{}, err
		}
		env.Data = raw
	}
	return env, nil
}

// NewElementPayload carries one freshly created element.
type NewElementPayload struct {
	Element Element `json:"element"`
}

// FullSyncPayload carries a wholesale replacement of a room's elements.
type FullSyncPayload struct {
	Elements []Element `json:"data"`
}

// CanvasDataPayload is the server's element snapshot, sent on join and
// rebroadcast after a full sync.
type CanvasDataPayload struct {
	Elements []Element `json:"elements"`
}

// ChatMessagePayload is the client's outbound chat text; the server stamps
// sender and timestamp before storing.
type ChatMessagePayload struct {
	Text string `json:"text"`
}

// ChatEntry is one stored chat line.
type ChatEntry struct {
	Text      string `json:"text"`
	SenderID  string `json:"senderId"`
	Timestamp int64  `json:"timestamp"`
}

// ChatHistoryPayload is the chat log sent to a joining member.
type ChatHistoryPayload struct {
	Entries []ChatEntry `json:"entries"`
}

// BackgroundPayload carries a background change in either direction.
type BackgroundPayload struct {
	Background Background `json:"background"`
}

// GameMovePayload carries an in-place game element update. ElementID is the
// stable address; GameIndex is kept alongside it so receivers preserve
// element ordering.
type GameMovePayload struct {
	GameIndex int     `json:"gameIndex"`
	ElementID string  `json:"elementId,omitempty"`
	Game      Element `json:"game"`
}

// MemberPayload identifies a member joining or leaving a room.
type MemberPayload struct {
	ID string `json:"id"`
}
