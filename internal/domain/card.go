package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CardStatus string

const (
	CardStatusTodo       CardStatus = "todo"
	CardStatusInProgress CardStatus = "in_progress"
	CardStatusDone       CardStatus = "done"
)

func (s CardStatus) Valid() bool {
	switch s {
	case CardStatusTodo, CardStatusInProgress, CardStatusDone:
		return true
	default:
		return false
	}
}

type Card struct {
	ID          uuid.UUID
	BoardID     uuid.UUID
	Title       string
	Description string
	Status      CardStatus
	Position    int
	AssignedTo  *uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CardRepository interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, boardID, id uuid.UUID) (*Card, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Card, error)
	Update(ctx context.Context, c *Card) error
	Move(ctx context.Context, boardID, id uuid.UUID, status CardStatus, position int) error
	Delete(ctx context.Context, boardID, id uuid.UUID) error
}
