package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/Sculptor-AI/kanban/internal/api/v1"
	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /boards/{boardID}/cards
// ---------------------------------------------------------------------------

func TestCreateCard(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_relays_card_created", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()

		var created *domain.Card
		relay := &mockRelay{}

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
			cards: &mockCardRepo{
				createFunc: func(_ context.Context, c *domain.Card) error {
					created = c
					return nil
				},
			},
		}
		v1.RegisterCardRoutes(api, store, relay)

		resp := api.PostCtx(userCtx(uid), "/boards/"+bid.String()+"/cards", map[string]any{
			"title": "fix login flow",
		})

		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, created)
		assert.Equal(t, domain.CardStatusTodo, created.Status, "new cards default to todo")
		assert.Equal(t, uid, created.CreatedBy)
		assert.Equal(t, bid, created.BoardID)

		events := relay.all()
		require.Len(t, events, 1)
		assert.Equal(t, bid, events[0].boardID)
		assert.Equal(t, ws.EventCardCreated, events[0].event.Type)
		assert.Equal(t, "fix login flow", events[0].event.Payload["title"])
		assert.Equal(t, created.ID.String(), events[0].event.Payload["cardId"])
	})

	t.Run("invalid_status_rejected", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()

		var storeCalled bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
			cards: &mockCardRepo{
				createFunc: func(_ context.Context, _ *domain.Card) error {
					storeCalled = true
					return nil
				},
			},
		}
		v1.RegisterCardRoutes(api, store, &mockRelay{})

		resp := api.PostCtx(userCtx(uid), "/boards/"+bid.String()+"/cards", map[string]any{
			"title":  "x",
			"status": "archived",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.False(t, storeCalled)
	})

	t.Run("non_member_forbidden", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()

		repo := memberBoardRepo(&domain.Board{ID: bid})
		repo.isMemberFunc = func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return false, nil
		}

		relay := &mockRelay{}
		_, api := humatest.New(t)
		store := &mockDataStore{boards: repo}
		v1.RegisterCardRoutes(api, store, relay)

		resp := api.PostCtx(userCtx(uid), "/boards/"+bid.String()+"/cards", map[string]any{"title": "x"})

		assert.Equal(t, http.StatusForbidden, resp.Code)
		assert.Empty(t, relay.all())
	})
}

// ---------------------------------------------------------------------------
// GET /boards/{boardID}/cards
// ---------------------------------------------------------------------------

func TestListCards(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	bid := uuid.New()

	_, api := humatest.New(t)
	store := &mockDataStore{
		boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
		cards: &mockCardRepo{
			listByBoardFunc: func(_ context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
				assert.Equal(t, bid, boardID)
				return []*domain.Card{
					{ID: uuid.New(), BoardID: bid, Title: "a", Status: domain.CardStatusTodo, Position: 0},
					{ID: uuid.New(), BoardID: bid, Title: "b", Status: domain.CardStatusDone, Position: 1},
				}, nil
			},
		},
	}
	v1.RegisterCardRoutes(api, store, &mockRelay{})

	resp := api.GetCtx(userCtx(uid), "/boards/"+bid.String()+"/cards")

	require.Equal(t, http.StatusOK, resp.Code)

	var cards []domain.Card
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cards))
	assert.Len(t, cards, 2)
}

// ---------------------------------------------------------------------------
// PUT /boards/{boardID}/cards/{cardID}/position
// ---------------------------------------------------------------------------

func TestMoveCard(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_relays_card_moved", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()
		cid := uuid.New()

		relay := &mockRelay{}
		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
			cards: &mockCardRepo{
				moveFunc: func(_ context.Context, boardID, id uuid.UUID, status domain.CardStatus, position int) error {
					assert.Equal(t, bid, boardID)
					assert.Equal(t, cid, id)
					assert.Equal(t, domain.CardStatusInProgress, status)
					assert.Equal(t, 3, position)
					return nil
				},
				getByIDFunc: func(_ context.Context, _, id uuid.UUID) (*domain.Card, error) {
					return &domain.Card{ID: id, BoardID: bid, Title: "x", Status: domain.CardStatusInProgress, Position: 3}, nil
				},
			},
		}
		v1.RegisterCardRoutes(api, store, relay)

		resp := api.PutCtx(userCtx(uid), "/boards/"+bid.String()+"/cards/"+cid.String()+"/position", map[string]any{
			"status":   "in_progress",
			"position": 3,
		})

		require.Equal(t, http.StatusOK, resp.Code)

		events := relay.all()
		require.Len(t, events, 1)
		assert.Equal(t, ws.EventCardMoved, events[0].event.Type)
		assert.Equal(t, "in_progress", events[0].event.Payload["status"])
	})

	t.Run("invalid_target_column", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()
		cid := uuid.New()

		var storeCalled bool
		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
			cards: &mockCardRepo{
				moveFunc: func(_ context.Context, _, _ uuid.UUID, _ domain.CardStatus, _ int) error {
					storeCalled = true
					return nil
				},
			},
		}
		v1.RegisterCardRoutes(api, store, &mockRelay{})

		resp := api.PutCtx(userCtx(uid), "/boards/"+bid.String()+"/cards/"+cid.String()+"/position", map[string]any{
			"status":   "archived",
			"position": 0,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.False(t, storeCalled)
	})

	t.Run("unknown_card_404", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		bid := uuid.New()

		_, api := humatest.New(t)
		store := &mockDataStore{
			boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
			cards: &mockCardRepo{
				moveFunc: func(_ context.Context, _, _ uuid.UUID, _ domain.CardStatus, _ int) error {
					return domain.ErrNotFound
				},
			},
		}
		v1.RegisterCardRoutes(api, store, &mockRelay{})

		resp := api.PutCtx(userCtx(uid), "/boards/"+bid.String()+"/cards/"+uuid.NewString()+"/position", map[string]any{
			"status":   "done",
			"position": 0,
		})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// DELETE /boards/{boardID}/cards/{cardID}
// ---------------------------------------------------------------------------

func TestDeleteCard(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	bid := uuid.New()
	cid := uuid.New()

	var deleted uuid.UUID
	relay := &mockRelay{}

	_, api := humatest.New(t)
	store := &mockDataStore{
		boards: memberBoardRepo(&domain.Board{ID: bid, OwnerID: uid}),
		cards: &mockCardRepo{
			deleteFunc: func(_ context.Context, boardID, id uuid.UUID) error {
				assert.Equal(t, bid, boardID)
				deleted = id
				return nil
			},
		},
	}
	v1.RegisterCardRoutes(api, store, relay)

	resp := api.DeleteCtx(userCtx(uid), "/boards/"+bid.String()+"/cards/"+cid.String())

	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, cid, deleted)

	events := relay.all()
	require.Len(t, events, 1)
	assert.Equal(t, ws.EventCardDeleted, events[0].event.Type)
	assert.Equal(t, cid.String(), events[0].event.Payload["cardId"])
}
