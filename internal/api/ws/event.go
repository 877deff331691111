package ws

import (
	"encoding/json"
	"fmt"
)

// Client-originated and server-originated frame types. Any type not listed
// here is relayed as-is with the sender's identity injected.
const (
	EventPing       = "ping"
	EventPong       = "pong"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"

	EventCursorMove    = "cursor_move"
	EventCardDragStart = "card_drag_start"
	EventCardDragEnd   = "card_drag_end"
)

// Mutation event types pushed through the relay boundary by REST handlers.
const (
	EventCardCreated   = "card_created"
	EventCardUpdated   = "card_updated"
	EventCardMoved     = "card_moved"
	EventCardDeleted   = "card_deleted"
	EventBoardUpdated  = "board_updated"
	EventMemberAdded   = "member_added"
	EventMemberRemoved = "member_removed"
)

// Event is one JSON frame on the wire, in either direction. Events are
// immutable once constructed; identity injection builds a new payload.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ParseEvent decodes an inbound frame. A frame without a type is malformed.
func ParseEvent(raw []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("ws.ParseEvent: %w", err)
	}
	if ev.Type == "" {
		return Event{}, fmt.Errorf("ws.ParseEvent: missing event type")
	}
	return ev, nil
}

// withIdentity returns a copy of the event with the sender's userId merged
// into the payload. Cursor and drag frames also carry the username so peers
// can label live pointers without a lookup.
func (ev Event) withIdentity(id Identity) Event {
	payload := make(map[string]any, len(ev.Payload)+2)
	for k, v := range ev.Payload {
		payload[k] = v
	}
	payload["userId"] = id.UserID

	switch ev.Type {
	case EventCursorMove, EventCardDragStart, EventCardDragEnd:
		payload["username"] = id.Username
	}

	return Event{Type: ev.Type, Payload: payload}
}

// presenceEvent builds a user_joined or user_left frame.
func presenceEvent(typ string, id Identity, onlineCount int) Event {
	return Event{
		Type: typ,
		Payload: map[string]any{
			"userId":      id.UserID,
			"username":    id.Username,
			"onlineCount": onlineCount,
		},
	}
}

var pongFrame = Event{Type: EventPong, Payload: map[string]any{}}
