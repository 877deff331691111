package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is a persisted login session. The opaque token handed to the client
// is never stored; only its SHA-256 hash is.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	// GetByTokenHash returns the session regardless of expiry; callers decide
	// how to treat an expired row.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
