package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	redisclient "github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const (
	refreshSecretBytes = 32
	tokenSeparator     = "."
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, sessionID string) (bool, error)
}

// Session is a freshly issued refresh session. ID doubles as the access token jti.
type Session struct {
	ID           string
	RefreshToken string
}

type record struct {
	UserID uuid.UUID `json:"user_id"`
	Secret string    `json:"secret"`
}

// Manager issues and revokes opaque refresh tokens of the form <session_id>.<secret>.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := cfg.AccessTokenTTL(); ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Create opens a new session for userID.
func (m *Manager) Create(ctx context.Context, userID uuid.UUID) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, fmt.Errorf("user id is required")
	}
	secret, err := generateSecret()
	if err != nil {
		return Session{}, err
	}
	id := uuid.NewString()
	payload, err := json.Marshal(record{UserID: userID, Secret: secret})
	if err != nil {
		return Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(id), payload, m.ttl); err != nil {
		return Session{}, fmt.Errorf("storing session: %w", err)
	}
	return Session{ID: id, RefreshToken: id + tokenSeparator + secret}, nil
}

// Resolve validates a refresh token and returns the owning user and session id.
func (m *Manager) Resolve(ctx context.Context, refreshToken string) (uuid.UUID, string, error) {
	id, secret, ok := splitToken(refreshToken)
	if !ok {
		return uuid.Nil, "", ErrInvalidRefreshToken
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(id))
	if err != nil {
		return uuid.Nil, "", wrapNotFound(err)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return uuid.Nil, "", ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(rec.Secret), []byte(secret)) != 1 {
		return uuid.Nil, "", ErrInvalidRefreshToken
	}
	return rec.UserID, id, nil
}

// Revoke deletes the session behind refreshToken, invalidating every access token bound to it.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	_, id, err := m.Resolve(ctx, refreshToken)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, m.keyer.SessionKey(id))
}

// HasSession reports whether the session behind an access token jti is still live.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, fmt.Errorf("session id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(sessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func splitToken(token string) (string, string, bool) {
	id, secret, found := strings.Cut(strings.TrimSpace(token), tokenSeparator)
	if !found || secret == "" {
		return "", "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", "", false
	}
	return id, secret, true
}

func generateSecret() (string, error) {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
