package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/domain"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Sessions() domain.SessionRepository
	Boards() domain.BoardRepository
	Cards() domain.CardRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, username string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
}

// Relayer pushes mutation events into a board's hub after a commit.
// *ws.Locator satisfies this interface.
type Relayer interface {
	Relay(ctx context.Context, boardID uuid.UUID, ev ws.Event)
}
