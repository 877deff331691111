package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Sculptor-AI/kanban/internal/domain"
)

// ErrCacheMiss is returned when a token hash has no cached entry.
var ErrCacheMiss = errors.New("redis: cache miss")

// SessionCache is a read-through cache in front of the sessions table. Every
// WebSocket upgrade and REST request resolves a token, so session rows are by
// far the hottest lookup in the system.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// cachedSession is the wire form stored in Redis.
type cachedSession struct {
	SessionID uuid.UUID `json:"sid"`
	UserID    uuid.UUID `json:"uid"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"exp"`
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*SessionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &SessionCache{client: client, ttl: ttl}, nil
}

func (c *SessionCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("redis.SessionCache.Close: %w", err)
	}
	return nil
}

// Get returns the cached session entry for a token hash, or ErrCacheMiss.
func (c *SessionCache) Get(ctx context.Context, tokenHash string) (*domain.Session, string, error) {
	raw, err := c.client.Get(ctx, SessionKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", fmt.Errorf("redis.SessionCache.Get: %w", ErrCacheMiss)
	}
	if err != nil {
		return nil, "", fmt.Errorf("redis.SessionCache.Get: %w", err)
	}

	var cs cachedSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		// A corrupt entry is treated as a miss; the caller falls back to Postgres.
		return nil, "", fmt.Errorf("redis.SessionCache.Get: %w", ErrCacheMiss)
	}

	return &domain.Session{
		ID:        cs.SessionID,
		UserID:    cs.UserID,
		TokenHash: tokenHash,
		ExpiresAt: cs.ExpiresAt,
	}, cs.Username, nil
}

// Set caches a resolved session. The entry TTL is the cache TTL capped by the
// session's own remaining lifetime so a cached entry can never outlive its row.
func (c *SessionCache) Set(ctx context.Context, s *domain.Session, username string) error {
	remaining := time.Until(s.ExpiresAt)
	if remaining <= 0 {
		return nil
	}

	ttl := c.ttl
	if remaining < ttl {
		ttl = remaining
	}

	raw, err := json.Marshal(cachedSession{
		SessionID: s.ID,
		UserID:    s.UserID,
		Username:  username,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("redis.SessionCache.Set: %w", err)
	}

	if err := c.client.Set(ctx, SessionKey(s.TokenHash), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis.SessionCache.Set: %w", err)
	}

	return nil
}

// Delete evicts a token hash, used on logout so revocation is immediate.
func (c *SessionCache) Delete(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, SessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis.SessionCache.Delete: %w", err)
	}
	return nil
}

// SessionKey returns the Redis key for a session token hash.
func SessionKey(tokenHash string) string {
	return "session:" + tokenHash
}
