package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BoardRole string

const (
	BoardRoleOwner  BoardRole = "owner"
	BoardRoleMember BoardRole = "member"
)

type Board struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BoardMember struct {
	BoardID uuid.UUID
	UserID  uuid.UUID
	Role    BoardRole
	AddedAt time.Time
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	Update(ctx context.Context, b *Board) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Membership backs the hub's access checks; safe for concurrent use.
	AddMember(ctx context.Context, m *BoardMember) error
	RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error
	ListMembers(ctx context.Context, boardID uuid.UUID) ([]*BoardMember, error)
	IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}
