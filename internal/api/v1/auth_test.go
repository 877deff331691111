package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/Sculptor-AI/kanban/internal/api/v1"
	"github.com/Sculptor-AI/kanban/internal/auth"
	"github.com/Sculptor-AI/kanban/internal/domain"
)

// ---------------------------------------------------------------------------
// POST /auth/register
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_returns_user_and_token", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		now := time.Now().Truncate(time.Second)

		_, api := humatest.New(t)
		svc := &mockAuthService{
			registerFunc: func(_ context.Context, email, _, username string) (*domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "alice", username)
				return &domain.User{ID: uid, Email: email, Username: username, PasswordHash: "secret", CreatedAt: now, UpdatedAt: now}, nil
			},
			loginFunc: func(_ context.Context, email, _ string) (string, *domain.User, error) {
				return "tok-abc", &domain.User{ID: uid, Email: email}, nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
			"username": "alice",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User  domain.User `json:"user"`
			Token string      `json:"token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, uid, body.User.ID)
		assert.Empty(t, body.User.PasswordHash, "password hash must never leave the server")
		assert.Equal(t, "tok-abc", body.Token)
	})

	t.Run("duplicate_email_conflict", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			registerFunc: func(_ context.Context, _, _, _ string) (*domain.User, error) {
				return nil, auth.ErrUserAlreadyExists
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2hunter2",
			"username": "alice",
		})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("short_password_rejected_by_schema", func(t *testing.T) {
		t.Parallel()

		var svcCalled bool
		_, api := humatest.New(t)
		svc := &mockAuthService{
			registerFunc: func(_ context.Context, _, _, _ string) (*domain.User, error) {
				svcCalled = true
				return nil, nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/register", map[string]any{
			"email":    "alice@example.com",
			"password": "short",
			"username": "alice",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.False(t, svcCalled, "service must not run for schema-invalid input")
	})
}

// ---------------------------------------------------------------------------
// POST /auth/login
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			loginFunc: func(_ context.Context, email, password string) (string, *domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "hunter2", password)
				return "tok-xyz", &domain.User{ID: uid, Email: email, Username: "alice", PasswordHash: "secret"}, nil
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2",
		})

		require.Equal(t, http.StatusOK, resp.Code)

		var body struct {
			User  domain.User `json:"user"`
			Token string      `json:"token"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "tok-xyz", body.Token)
		assert.Empty(t, body.User.PasswordHash)
	})

	t.Run("bad_credentials_unauthorized", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (string, *domain.User, error) {
				return "", nil, auth.ErrInvalidCredentials
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("service_error_is_500", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		svc := &mockAuthService{
			loginFunc: func(_ context.Context, _, _ string) (string, *domain.User, error) {
				return "", nil, errors.New("db: connection lost")
			},
		}
		v1.RegisterAuthRoutes(api, svc)

		resp := api.Post("/auth/login", map[string]any{
			"email":    "alice@example.com",
			"password": "hunter2",
		})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /auth/logout
// ---------------------------------------------------------------------------

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("revokes_the_presented_token", func(t *testing.T) {
		t.Parallel()

		uid := uuid.New()
		var revoked string

		_, api := humatest.New(t)
		svc := &mockAuthService{
			logoutFunc: func(_ context.Context, token string) error {
				revoked = token
				return nil
			},
		}
		v1.RegisterSessionRoutes(api, svc)

		resp := api.PostCtx(sessionCtx(uid, "tok-live"), "/auth/logout")

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "tok-live", revoked)

		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("missing_session_context", func(t *testing.T) {
		t.Parallel()

		var svcCalled bool
		_, api := humatest.New(t)
		svc := &mockAuthService{
			logoutFunc: func(_ context.Context, _ string) error {
				svcCalled = true
				return nil
			},
		}
		v1.RegisterSessionRoutes(api, svc)

		resp := api.PostCtx(context.Background(), "/auth/logout")

		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.False(t, svcCalled)
	})
}
