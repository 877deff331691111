package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"

	"github.com/Sculptor-AI/kanban/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

const sessionTokenLen = 32 // raw bytes; hex-encoded to 64 chars

// Principal is the identity resolved from a session token.
type Principal struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	Username  string
	ExpiresAt time.Time
}

// SessionCache caches resolved sessions keyed by token hash. Misses are
// reported via an error wrapping the implementation's miss sentinel; any
// error from Get is treated as a miss.
type SessionCache interface {
	Get(ctx context.Context, tokenHash string) (*domain.Session, string, error)
	Set(ctx context.Context, s *domain.Session, username string) error
	Delete(ctx context.Context, tokenHash string) error
}

// Service provides registration, login, and session resolution. Session
// tokens are opaque: the client holds a random hex string, the store holds
// its SHA-256 hash, so a leaked sessions table does not leak usable tokens.
type Service struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	cache      SessionCache // may be nil
	sessionTTL time.Duration
}

// NewService creates a new auth service. cache may be nil, in which case
// every resolution hits the sessions table.
func NewService(users domain.UserRepository, sessions domain.SessionRepository, cache SessionCache, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

// Register creates a new user with email/password. The password is hashed
// with argon2id before storage.
func (s *Service) Register(ctx context.Context, email, password, username string) (*domain.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Username:     username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return user, nil
}

// Login validates email/password and opens a persisted session. Returns the
// opaque token the client presents on every subsequent request and upgrade.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return "", nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	raw := make([]byte, sessionTokenLen)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("auth.Login: generating token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("auth.Login: %w", err)
	}

	return token, user, nil
}

// Logout revokes the session behind a token. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	tokenHash := HashToken(token)

	if s.cache != nil {
		if err := s.cache.Delete(ctx, tokenHash); err != nil {
			log.Warn().Err(err).Msg("auth: session cache evict failed")
		}
	}

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("auth.Logout: %w", err)
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("auth.Logout: %w", err)
	}

	return nil
}

// ResolveSession maps an opaque token to the owning identity. Returns
// domain.ErrUnauthorized when the token is unknown or the session expired.
// Safe for concurrent use by any number of callers.
func (s *Service) ResolveSession(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("auth.ResolveSession: %w", domain.ErrUnauthorized)
	}

	tokenHash := HashToken(token)
	now := time.Now()

	if s.cache != nil {
		if session, username, err := s.cache.Get(ctx, tokenHash); err == nil {
			if session.Expired(now) {
				return nil, fmt.Errorf("auth.ResolveSession: %w", domain.ErrUnauthorized)
			}
			return &Principal{
				SessionID: session.ID,
				UserID:    session.UserID,
				Username:  username,
				ExpiresAt: session.ExpiresAt,
			}, nil
		}
	}

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("auth.ResolveSession: %w", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("auth.ResolveSession: %w", err)
	}

	if session.Expired(now) {
		// Expired rows are reaped lazily; the periodic sweep catches the rest.
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			log.Warn().Err(delErr).Msg("auth: expired session cleanup failed")
		}
		return nil, fmt.Errorf("auth.ResolveSession: %w", domain.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth.ResolveSession: %w", domain.ErrUnauthorized)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, session, user.Username); err != nil {
			log.Warn().Err(err).Msg("auth: session cache fill failed")
		}
	}

	return &Principal{
		SessionID: session.ID,
		UserID:    session.UserID,
		Username:  user.Username,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// SweepExpiredSessions deletes expired session rows. Intended to run
// periodically from the entrypoint.
func (s *Service) SweepExpiredSessions(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("auth: session sweep failed")
		return
	}
	if n > 0 {
		log.Debug().Int64("deleted", n).Msg("auth: swept expired sessions")
	}
}

// HashToken returns the hex SHA-256 of an opaque session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	// Split salt$hash
	var saltHex, hashHex string
	for i := range len(encoded) {
		if encoded[i] == '$' {
			saltHex = encoded[:i]
			hashHex = encoded[i+1:]
			break
		}
	}

	if saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison to prevent timing attacks.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
