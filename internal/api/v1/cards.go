package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/domain"
)

type CreateCardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Card title"`
		Description string     `json:"description,omitempty" doc:"Card description"`
		Status      string     `json:"status,omitempty" doc:"Initial column (defaults to todo)"`
		Position    int        `json:"position,omitempty" doc:"Position within the column"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type CreateCardOutput struct {
	Body *domain.Card
}

type ListCardsInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type ListCardsOutput struct {
	Body []*domain.Card
}

type UpdateCardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	CardID  uuid.UUID `path:"cardID" doc:"Card ID"`
	Body    struct {
		Title       string     `json:"title,omitempty" maxLength:"500" doc:"Card title"`
		Description string     `json:"description,omitempty" doc:"Card description"`
		AssignedTo  *uuid.UUID `json:"assigned_to,omitempty" doc:"Assigned user ID"`
	}
}

type UpdateCardOutput struct {
	Body *domain.Card
}

type MoveCardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	CardID  uuid.UUID `path:"cardID" doc:"Card ID"`
	Body    struct {
		Status   string `json:"status" minLength:"1" doc:"Target column"`
		Position int    `json:"position" doc:"Position within the column"`
	}
}

type MoveCardOutput struct {
	Body *domain.Card
}

type DeleteCardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	CardID  uuid.UUID `path:"cardID" doc:"Card ID"`
}

// cardPayload is the relay representation of a card.
func cardPayload(c *domain.Card) map[string]any {
	p := map[string]any{
		"cardId":      c.ID.String(),
		"boardId":     c.BoardID.String(),
		"title":       c.Title,
		"description": c.Description,
		"status":      string(c.Status),
		"position":    c.Position,
	}
	if c.AssignedTo != nil {
		p["assignedTo"] = c.AssignedTo.String()
	}
	return p
}

func RegisterCardRoutes(api huma.API, store DataStore, relay Relayer) {
	huma.Register(api, huma.Operation{
		OperationID: "create-card",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/cards",
		Summary:     "Create a card on a board",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *CreateCardInput) (*CreateCardOutput, error) {
		_, userID, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}

		status := domain.CardStatusTodo
		if input.Body.Status != "" {
			status = domain.CardStatus(input.Body.Status)
			if !status.Valid() {
				return nil, huma.Error422UnprocessableEntity("invalid card status")
			}
		}

		now := time.Now()
		card := &domain.Card{
			ID:          uuid.New(),
			BoardID:     input.BoardID,
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      status,
			Position:    input.Body.Position,
			AssignedTo:  input.Body.AssignedTo,
			CreatedBy:   userID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Cards().Create(ctx, card); err != nil {
			return nil, huma.Error500InternalServerError("failed to create card", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{Type: ws.EventCardCreated, Payload: cardPayload(card)})

		return &CreateCardOutput{Body: card}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cards",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/cards",
		Summary:     "List the cards on a board",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *ListCardsInput) (*ListCardsOutput, error) {
		if _, _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		cards, err := store.Cards().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list cards", err)
		}

		return &ListCardsOutput{Body: cards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-card",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}/cards/{cardID}",
		Summary:     "Update a card's fields",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *UpdateCardInput) (*UpdateCardOutput, error) {
		if _, _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		card, err := store.Cards().GetByID(ctx, input.BoardID, input.CardID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("card not found")
			}
			return nil, huma.Error500InternalServerError("failed to load card", err)
		}

		if input.Body.Title != "" {
			card.Title = input.Body.Title
		}
		if input.Body.Description != "" {
			card.Description = input.Body.Description
		}
		if input.Body.AssignedTo != nil {
			card.AssignedTo = input.Body.AssignedTo
		}
		card.UpdatedAt = time.Now()

		if err := store.Cards().Update(ctx, card); err != nil {
			return nil, huma.Error500InternalServerError("failed to update card", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{Type: ws.EventCardUpdated, Payload: cardPayload(card)})

		return &UpdateCardOutput{Body: card}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "move-card",
		Method:      http.MethodPut,
		Path:        "/boards/{boardID}/cards/{cardID}/position",
		Summary:     "Move a card to a column position",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *MoveCardInput) (*MoveCardOutput, error) {
		if _, _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		status := domain.CardStatus(input.Body.Status)
		if !status.Valid() {
			return nil, huma.Error422UnprocessableEntity("invalid card status")
		}

		if err := store.Cards().Move(ctx, input.BoardID, input.CardID, status, input.Body.Position); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("card not found")
			}
			return nil, huma.Error500InternalServerError("failed to move card", err)
		}

		card, err := store.Cards().GetByID(ctx, input.BoardID, input.CardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to reload card", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{Type: ws.EventCardMoved, Payload: cardPayload(card)})

		return &MoveCardOutput{Body: card}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-card",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}/cards/{cardID}",
		Summary:     "Delete a card",
		Tags:        []string{"Cards"},
	}, func(ctx context.Context, input *DeleteCardInput) (*struct{}, error) {
		if _, _, err := requireMember(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		if err := store.Cards().Delete(ctx, input.BoardID, input.CardID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("card not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete card", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{
			Type: ws.EventCardDeleted,
			Payload: map[string]any{
				"cardId":  input.CardID.String(),
				"boardId": input.BoardID.String(),
			},
		})

		return nil, nil
	})
}
