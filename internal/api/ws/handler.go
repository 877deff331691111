package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Sculptor-AI/kanban/internal/domain"
)

// SessionResolver maps an opaque session token to the owning identity.
// Returns an error wrapping domain.ErrUnauthorized for unknown or expired
// tokens. Implementations must be safe for concurrent use by many hubs.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (Identity, error)
}

// MembershipChecker reports whether a user may access a board.
type MembershipChecker interface {
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

// Handler owns the connection-upgrade and relay endpoints for all boards.
type Handler struct {
	locator    *Locator
	sessions   SessionResolver
	membership MembershipChecker
}

func NewHandler(locator *Locator, sessions SessionResolver, membership MembershipChecker) *Handler {
	return &Handler{
		locator:    locator,
		sessions:   sessions,
		membership: membership,
	}
}

// Locator exposes the hub registry so REST mutation handlers can relay.
func (h *Handler) Locator() *Locator {
	return h.locator
}

// ServeBoard upgrades a client onto a board's hub. Authentication and the
// membership check complete before the transport upgrade and before any
// registry mutation; a client that drops mid-handshake is never registered.
func (h *Handler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := bearerOrQueryToken(r)
	boardIDStr := chi.URLParam(r, "boardID")
	if token == "" || boardIDStr == "" {
		http.Error(w, "missing token or board id", http.StatusBadRequest)
		return
	}

	boardID, err := uuid.Parse(boardIDStr)
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	identity, err := h.sessions.ResolveSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("ws: session resolution")
		http.Error(w, "session resolution failed", http.StatusInternalServerError)
		return
	}

	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		http.Error(w, "invalid or expired session", http.StatusUnauthorized)
		return
	}

	member, err := h.membership.IsMember(ctx, boardID, userID)
	if err != nil {
		log.Error().Err(err).Stringer("board_id", boardID).Msg("ws: membership check")
		http.Error(w, "membership check failed", http.StatusInternalServerError)
		return
	}
	if !member {
		http.Error(w, "not a board member", http.StatusForbidden)
		return
	}

	sock, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws: accept")
		return
	}
	defer sock.CloseNow()

	conn := newConn(sock, identity)
	hub := h.locator.Hub(boardID)

	hub.Register(ctx, conn)
	defer hub.Unregister(context.WithoutCancel(ctx), conn)

	for {
		_, data, err := sock.Read(ctx)
		if err != nil {
			// Normal closure, error, and context cancellation all land here;
			// the deferred Unregister announces user_left either way.
			return
		}
		hub.HandleMessage(ctx, conn, data)
	}
}

// ServeRelay accepts a mutation event from an external caller and pushes it
// into the board's hub. Fire-and-forget: the response acknowledges receipt,
// not delivery, and a malformed body is dropped after the ack contract.
func (h *Handler) ServeRelay(w http.ResponseWriter, r *http.Request) {
	boardIDStr := chi.URLParam(r, "boardID")
	boardID, err := uuid.Parse(boardIDStr)
	if err != nil {
		http.Error(w, "invalid board id", http.StatusBadRequest)
		return
	}

	var ev Event
	if decodeErr := json.NewDecoder(r.Body).Decode(&ev); decodeErr != nil || ev.Type == "" {
		log.Debug().Err(decodeErr).Stringer("board_id", boardID).Msg("ws: dropping malformed relay event")
	} else {
		h.locator.Relay(r.Context(), boardID, ev)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// bearerOrQueryToken pulls the session token from the token query parameter
// or an Authorization: Bearer header. Browsers cannot set headers on
// WebSocket dials, so the query form is the primary one.
func bearerOrQueryToken(r *http.Request) string {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}
