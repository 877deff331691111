package v1_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Sculptor-AI/kanban/internal/api/ws"
	"github.com/Sculptor-AI/kanban/internal/domain"
	"github.com/Sculptor-AI/kanban/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject user/session into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, middleware.ContextKeyUserID, userID)
	ctx = context.WithValue(ctx, middleware.ContextKeyUsername, "alice")
	return ctx
}

func sessionCtx(userID uuid.UUID, token string) context.Context {
	ctx := userCtx(userID)
	ctx = context.WithValue(ctx, middleware.ContextKeySessionToken, token)
	return ctx
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	boards   domain.BoardRepository
	cards    domain.CardRepository
}

func (m *mockDataStore) Users() domain.UserRepository       { return m.users }
func (m *mockDataStore) Sessions() domain.SessionRepository { return m.sessions }
func (m *mockDataStore) Boards() domain.BoardRepository     { return m.boards }
func (m *mockDataStore) Cards() domain.CardRepository       { return m.cards }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	updateFunc     func(ctx context.Context, u *domain.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.updateFunc(ctx, u)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc       func(ctx context.Context, b *domain.Board) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	updateFunc       func(ctx context.Context, b *domain.Board) error
	deleteFunc       func(ctx context.Context, id uuid.UUID) error
	addMemberFunc    func(ctx context.Context, m *domain.BoardMember) error
	removeMemberFunc func(ctx context.Context, boardID, userID uuid.UUID) error
	listMembersFunc  func(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error)
	isMemberFunc     func(ctx context.Context, boardID, userID uuid.UUID) (bool, error)
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockBoardRepo) Update(ctx context.Context, b *domain.Board) error {
	return m.updateFunc(ctx, b)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockBoardRepo) AddMember(ctx context.Context, member *domain.BoardMember) error {
	return m.addMemberFunc(ctx, member)
}

func (m *mockBoardRepo) RemoveMember(ctx context.Context, boardID, userID uuid.UUID) error {
	return m.removeMemberFunc(ctx, boardID, userID)
}

func (m *mockBoardRepo) ListMembers(ctx context.Context, boardID uuid.UUID) ([]*domain.BoardMember, error) {
	return m.listMembersFunc(ctx, boardID)
}

func (m *mockBoardRepo) IsMember(ctx context.Context, boardID, userID uuid.UUID) (bool, error) {
	return m.isMemberFunc(ctx, boardID, userID)
}

// ---------------------------------------------------------------------------
// Mock CardRepository
// ---------------------------------------------------------------------------

type mockCardRepo struct {
	createFunc      func(ctx context.Context, c *domain.Card) error
	getByIDFunc     func(ctx context.Context, boardID, id uuid.UUID) (*domain.Card, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error)
	updateFunc      func(ctx context.Context, c *domain.Card) error
	moveFunc        func(ctx context.Context, boardID, id uuid.UUID, status domain.CardStatus, position int) error
	deleteFunc      func(ctx context.Context, boardID, id uuid.UUID) error
}

func (m *mockCardRepo) Create(ctx context.Context, c *domain.Card) error {
	return m.createFunc(ctx, c)
}

func (m *mockCardRepo) GetByID(ctx context.Context, boardID, id uuid.UUID) (*domain.Card, error) {
	return m.getByIDFunc(ctx, boardID, id)
}

func (m *mockCardRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Card, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockCardRepo) Update(ctx context.Context, c *domain.Card) error {
	return m.updateFunc(ctx, c)
}

func (m *mockCardRepo) Move(ctx context.Context, boardID, id uuid.UUID, status domain.CardStatus, position int) error {
	return m.moveFunc(ctx, boardID, id, status, position)
}

func (m *mockCardRepo) Delete(ctx context.Context, boardID, id uuid.UUID) error {
	return m.deleteFunc(ctx, boardID, id)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc func(ctx context.Context, email, password, username string) (*domain.User, error)
	loginFunc    func(ctx context.Context, email, password string) (string, *domain.User, error)
	logoutFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) Register(ctx context.Context, email, password, username string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, username)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	return m.logoutFunc(ctx, token)
}

// ---------------------------------------------------------------------------
// Recording Relayer
// ---------------------------------------------------------------------------

type relayedEvent struct {
	boardID uuid.UUID
	event   ws.Event
}

type mockRelay struct {
	mu     sync.Mutex
	events []relayedEvent
}

func (m *mockRelay) Relay(_ context.Context, boardID uuid.UUID, ev ws.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, relayedEvent{boardID: boardID, event: ev})
}

func (m *mockRelay) all() []relayedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]relayedEvent, len(m.events))
	copy(out, m.events)
	return out
}

// memberBoardRepo is a shortcut for handlers that only need the
// GetByID + IsMember pair to pass the membership gate.
func memberBoardRepo(board *domain.Board) *mockBoardRepo {
	return &mockBoardRepo{
		getByIDFunc: func(_ context.Context, _ uuid.UUID) (*domain.Board, error) {
			return board, nil
		},
		isMemberFunc: func(_ context.Context, _, _ uuid.UUID) (bool, error) {
			return true, nil
		},
	}
}
