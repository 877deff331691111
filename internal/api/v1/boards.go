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
	"github.com/Sculptor-AI/kanban/internal/server/middleware"
)

type CreateBoardInput struct {
	Body struct {
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Board name"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Board description"`
	}
}

type CreateBoardOutput struct {
	Body *domain.Board
}

type ListBoardsOutput struct {
	Body []*domain.Board
}

type GetBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type BoardDetail struct {
	Board   *domain.Board         `json:"board"`
	Members []*domain.BoardMember `json:"members"`
	Cards   []*domain.Card        `json:"cards"`
}

type GetBoardOutput struct {
	Body *BoardDetail
}

type UpdateBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Name        string `json:"name,omitempty" maxLength:"255" doc:"Board name"`
		Description string `json:"description,omitempty" maxLength:"2000" doc:"Board description"`
	}
}

type UpdateBoardOutput struct {
	Body *domain.Board
}

type DeleteBoardInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
}

type AddMemberInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		UserID uuid.UUID `json:"user_id" doc:"User to add"`
	}
}

type AddMemberOutput struct {
	Body *domain.BoardMember
}

type RemoveMemberInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	UserID  uuid.UUID `path:"userID" doc:"User to remove"`
}

// requireMember loads a board and verifies the caller belongs to it.
func requireMember(ctx context.Context, store DataStore, boardID uuid.UUID) (*domain.Board, uuid.UUID, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return nil, uuid.Nil, huma.Error401Unauthorized("missing user context")
	}

	board, err := store.Boards().GetByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, uuid.Nil, huma.Error404NotFound("board not found")
		}
		return nil, uuid.Nil, huma.Error500InternalServerError("failed to load board", err)
	}

	member, err := store.Boards().IsMember(ctx, boardID, userID)
	if err != nil {
		return nil, uuid.Nil, huma.Error500InternalServerError("membership check failed", err)
	}
	if !member {
		return nil, uuid.Nil, huma.Error403Forbidden("not a board member")
	}

	return board, userID, nil
}

func RegisterBoardRoutes(api huma.API, store DataStore, relay Relayer) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a new board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing user context")
		}

		now := time.Now()
		board := &domain.Board{
			ID:          uuid.New(),
			OwnerID:     userID,
			Name:        input.Body.Name,
			Description: input.Body.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := store.Boards().Create(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to create board", err)
		}

		return &CreateBoardOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the caller belongs to",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		userID, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing user context")
		}

		boards, err := store.Boards().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list boards", err)
		}

		return &ListBoardsOutput{Body: boards}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}",
		Summary:     "Get a board with its members and cards",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		board, _, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}

		members, err := store.Boards().ListMembers(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list members", err)
		}

		cards, err := store.Cards().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list cards", err)
		}

		return &GetBoardOutput{Body: &BoardDetail{Board: board, Members: members, Cards: cards}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-board",
		Method:      http.MethodPatch,
		Path:        "/boards/{boardID}",
		Summary:     "Update board name or description",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *UpdateBoardInput) (*UpdateBoardOutput, error) {
		board, _, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}

		if input.Body.Name != "" {
			board.Name = input.Body.Name
		}
		if input.Body.Description != "" {
			board.Description = input.Body.Description
		}
		board.UpdatedAt = time.Now()

		if err := store.Boards().Update(ctx, board); err != nil {
			return nil, huma.Error500InternalServerError("failed to update board", err)
		}

		relay.Relay(ctx, board.ID, ws.Event{
			Type: ws.EventBoardUpdated,
			Payload: map[string]any{
				"boardId":     board.ID.String(),
				"name":        board.Name,
				"description": board.Description,
			},
		})

		return &UpdateBoardOutput{Body: board}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-board",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}",
		Summary:     "Delete a board (owner only)",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *DeleteBoardInput) (*struct{}, error) {
		board, userID, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}
		if board.OwnerID != userID {
			return nil, huma.Error403Forbidden("only the owner can delete a board")
		}

		if err := store.Boards().Delete(ctx, input.BoardID); err != nil {
			return nil, huma.Error500InternalServerError("failed to delete board", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-board-member",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/members",
		Summary:     "Add a member to a board (owner only)",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *AddMemberInput) (*AddMemberOutput, error) {
		board, userID, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}
		if board.OwnerID != userID {
			return nil, huma.Error403Forbidden("only the owner can manage members")
		}

		if _, err := store.Users().GetByID(ctx, input.Body.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up user", err)
		}

		member := &domain.BoardMember{
			BoardID: input.BoardID,
			UserID:  input.Body.UserID,
			Role:    domain.BoardRoleMember,
			AddedAt: time.Now(),
		}

		if err := store.Boards().AddMember(ctx, member); err != nil {
			return nil, huma.Error500InternalServerError("failed to add member", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{
			Type: ws.EventMemberAdded,
			Payload: map[string]any{
				"boardId": input.BoardID.String(),
				"userId":  input.Body.UserID.String(),
			},
		})

		return &AddMemberOutput{Body: member}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-board-member",
		Method:      http.MethodDelete,
		Path:        "/boards/{boardID}/members/{userID}",
		Summary:     "Remove a member from a board (owner only)",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *RemoveMemberInput) (*struct{}, error) {
		board, userID, err := requireMember(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}
		if board.OwnerID != userID {
			return nil, huma.Error403Forbidden("only the owner can manage members")
		}
		if input.UserID == board.OwnerID {
			return nil, huma.Error409Conflict("cannot remove the board owner")
		}

		if err := store.Boards().RemoveMember(ctx, input.BoardID, input.UserID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("member not found")
			}
			return nil, huma.Error500InternalServerError("failed to remove member", err)
		}

		relay.Relay(ctx, input.BoardID, ws.Event{
			Type: ws.EventMemberRemoved,
			Payload: map[string]any{
				"boardId": input.BoardID.String(),
				"userId":  input.UserID.String(),
			},
		})

		return nil, nil
	})
}
