package ws

import (
	"context"

	"github.com/coder/websocket"
)

// Identity is the authenticated owner of a connection.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// transport is the subset of *websocket.Conn the hub needs. Tests substitute
// in-memory fakes.
type transport interface {
	Write(ctx context.Context, typ websocket.MessageType, p []byte) error
	Close(code websocket.StatusCode, reason string) error
}

// Conn is one live client connection, owned by exactly one hub. The identity
// is carried on the handle itself rather than in a side map, so any rebuild
// of hub state can recover identities from the live connection set alone.
type Conn struct {
	sock     transport
	identity Identity
}

func newConn(sock transport, identity Identity) *Conn {
	return &Conn{sock: sock, identity: identity}
}

// Identity returns the tag attached at upgrade time. Immutable for the
// connection's lifetime.
func (c *Conn) Identity() Identity {
	return c.identity
}

func (c *Conn) send(ctx context.Context, data []byte) error {
	return c.sock.Write(ctx, websocket.MessageText, data)
}
