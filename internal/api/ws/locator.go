package ws

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Locator maps each board to its one hub instance, creating it lazily on
// first reference. Every caller asking for the same board gets the same
// actor; hubs live for the process lifetime even when empty.
type Locator struct {
	mu   sync.Mutex
	hubs map[uuid.UUID]*Hub
}

func NewLocator() *Locator {
	return &Locator{hubs: make(map[uuid.UUID]*Hub)}
}

// Hub returns the hub for a board, instantiating it on first use.
func (l *Locator) Hub(boardID uuid.UUID) *Hub {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.hubs[boardID]
	if !ok {
		h = newHub(boardID)
		l.hubs[boardID] = h
	}
	return h
}

// Relay pushes a mutation event into a board's hub. This is the boundary
// REST handlers call after committing a write; it is fire-and-forget.
func (l *Locator) Relay(ctx context.Context, boardID uuid.UUID, ev Event) {
	l.Hub(boardID).Relay(ctx, ev)
}
