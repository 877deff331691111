package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sculptor-AI/kanban/internal/auth"
)

// SessionAuthenticator resolves an opaque session token to a principal.
// *auth.Service satisfies this interface.
type SessionAuthenticator interface {
	ResolveSession(ctx context.Context, token string) (*auth.Principal, error)
}

// Auth authenticates requests by bearer session token and stashes the
// resolved principal in the request context.
func Auth(sessions SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				unauthorized(w)
				return
			}

			principal, err := sessions.ResolveSession(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserID, principal.UserID)
			ctx = context.WithValue(ctx, ContextKeyUsername, principal.Username)
			ctx = context.WithValue(ctx, ContextKeySessionToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, `{"title":"Unauthorized","status":401,"detail":"missing or invalid session"}`, http.StatusUnauthorized)
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return auth[7:]
	}
	return ""
}
