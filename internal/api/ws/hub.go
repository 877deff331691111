package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// sendTimeout bounds a single delivery so one stalled peer cannot wedge the
// hub's broadcast cycle indefinitely.
const sendTimeout = 10 * time.Second

// Hub is the per-board fan-out actor. All registry mutation, presence
// recomputation, and broadcasting for one board are serialized under mu, so
// no client ever observes a presence count computed from a half-updated
// registry. Hubs for different boards share nothing and run concurrently.
//
// A hub never removes itself when it empties; it stays addressable through
// its Locator for the lifetime of the process.
type Hub struct {
	boardID uuid.UUID

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

func newHub(boardID uuid.UUID) *Hub {
	return &Hub{
		boardID: boardID,
		conns:   make(map[*Conn]struct{}),
	}
}

// BoardID returns the board this hub is authoritative for.
func (h *Hub) BoardID() uuid.UUID {
	return h.boardID
}

// Register adds an authenticated connection. The new connection receives a
// user_joined frame carrying its own identity and the fresh presence count;
// everyone else receives the same frame.
func (h *Hub) Register(ctx context.Context, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c] = struct{}{}
	online := h.presenceLocked()

	joined := presenceEvent(EventUserJoined, c.Identity(), online)
	h.deliverLocked(ctx, joined, c)
	h.broadcastLocked(ctx, joined, c)

	log.Debug().
		Stringer("board_id", h.boardID).
		Str("user_id", c.Identity().UserID).
		Int("online", online).
		Msg("ws: connection registered")
}

// Unregister removes a connection and announces user_left to the remainder.
// Idempotent: removing an unknown connection is a no-op.
func (h *Hub) Unregister(ctx context.Context, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}
	delete(h.conns, c)

	online := h.presenceLocked()
	h.broadcastLocked(ctx, presenceEvent(EventUserLeft, c.Identity(), online), nil)

	log.Debug().
		Stringer("board_id", h.boardID).
		Str("user_id", c.Identity().UserID).
		Int("online", online).
		Msg("ws: connection removed")
}

// HandleMessage processes one inbound frame from a registered connection.
// Frames from connections that raced a close are dropped silently; frames
// that fail to parse are dropped with the connection kept alive.
func (h *Hub) HandleMessage(ctx context.Context, c *Conn, raw []byte) {
	ev, err := ParseEvent(raw)
	if err != nil {
		log.Debug().Err(err).Stringer("board_id", h.boardID).Msg("ws: dropping malformed frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; !ok {
		return
	}

	if ev.Type == EventPing {
		h.deliverLocked(ctx, pongFrame, c)
		return
	}

	h.broadcastLocked(ctx, ev.withIdentity(c.Identity()), c)
}

// Relay broadcasts a mutation event to every registered connection with no
// exclusion. Fire-and-forget: the caller is not a connection and gets no
// delivery guarantee.
func (h *Hub) Relay(ctx context.Context, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcastLocked(ctx, ev, nil)
}

// Presence returns the number of distinct users currently connected.
func (h *Hub) Presence() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.presenceLocked()
}

// ConnCount returns the number of live connections (tabs, not users).
func (h *Hub) ConnCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.conns)
}

// presenceLocked recomputes the distinct-user count from scratch so a user
// holding several connections counts once. Callers hold mu.
func (h *Hub) presenceLocked() int {
	users := make(map[string]struct{}, len(h.conns))
	for c := range h.conns {
		users[c.Identity().UserID] = struct{}{}
	}
	return len(users)
}

// broadcastLocked serializes the event once and attempts delivery to every
// connection except exclude. A failed send is logged and swallowed; the
// connection is pruned when its read loop observes the close. Callers hold mu.
func (h *Hub) broadcastLocked(ctx context.Context, ev Event, exclude *Conn) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("ws: marshal broadcast")
		return
	}

	for c := range h.conns {
		if c == exclude {
			continue
		}
		h.sendLocked(ctx, c, data)
	}
}

// deliverLocked sends one event to a single connection.
func (h *Hub) deliverLocked(ctx context.Context, ev Event, c *Conn) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("ws: marshal frame")
		return
	}
	h.sendLocked(ctx, c, data)
}

func (h *Hub) sendLocked(ctx context.Context, c *Conn, data []byte) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := c.send(sendCtx, data); err != nil {
		log.Debug().
			Err(err).
			Stringer("board_id", h.boardID).
			Str("user_id", c.Identity().UserID).
			Msg("ws: send failed")
	}
}
