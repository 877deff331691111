package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sculptor-AI/kanban/internal/auth"
	"github.com/Sculptor-AI/kanban/internal/domain"
	"github.com/Sculptor-AI/kanban/internal/server/middleware"
)

type RegisterInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Username string `json:"username" minLength:"1" maxLength:"64" doc:"Display name"`
	}
}

type RegisterOutput struct {
	Body struct {
		User  *domain.User `json:"user"`
		Token string       `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"User email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		User  *domain.User `json:"user"`
		Token string       `json:"token"` //nolint:gosec // G117: auth response DTO
	}
}

type LogoutOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a new user",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		user, err := authSvc.Register(ctx, input.Body.Email, input.Body.Password, input.Body.Username)
		if err != nil {
			if errors.Is(err, auth.ErrUserAlreadyExists) {
				return nil, huma.Error409Conflict("user already exists")
			}
			return nil, huma.Error500InternalServerError("failed to register user", err)
		}

		token, _, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to open session", err)
		}

		user.PasswordHash = ""

		out := &RegisterOutput{}
		out.Body.User = user
		out.Body.Token = token
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		token, user, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, huma.Error500InternalServerError("login failed", err)
		}

		user.PasswordHash = ""

		out := &LoginOutput{}
		out.Body.User = user
		out.Body.Token = token
		return out, nil
	})
}

// RegisterSessionRoutes mounts the routes that require an authenticated
// session, i.e. logout.
func RegisterSessionRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Revoke the current session",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*LogoutOutput, error) {
		token, ok := middleware.SessionTokenFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("missing session")
		}

		if err := authSvc.Logout(ctx, token); err != nil {
			return nil, huma.Error500InternalServerError("logout failed", err)
		}

		out := &LogoutOutput{}
		out.Body.Status = "ok"
		return out, nil
	})
}
