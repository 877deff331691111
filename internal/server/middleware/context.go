package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ContextKeyUserID       contextKey = "user_id"
	ContextKeyUsername     contextKey = "username"
	ContextKeySessionToken contextKey = "session_token"
)

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	v, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return v, ok
}

func UsernameFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyUsername).(string)
	return v, ok
}

func SessionTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeySessionToken).(string)
	return v, ok
}
