package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const SessionCookie = "session"

// SessionStore maps session ids to user ids on the server side.
type SessionStore interface {
	Create(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (uint, error)
	Delete(ctx context.Context, id string) error
}

// ===============================
// Redis store
// ===============================

type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string { return "session:" + id }

func (s *RedisSessionStore) Create(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, sessionKey(id), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisSessionStore) Lookup(ctx context.Context, id string) (uint, error) {
	v, err := s.client.Get(ctx, sessionKey(id)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// ===============================
// In-process store, used when Redis is unreachable and in tests
// ===============================

type memoryEntry struct {
	userID  uint
	expires time.Time
}

type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (s *MemorySessionStore) Create(_ context.Context, id string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemorySessionStore) Lookup(_ context.Context, id string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return 0, ErrNoSession
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return 0, ErrNoSession
	}
	return e.userID, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// ===============================
// Signed cookie
// ===============================

// SessionManager signs the session id into the cookie value; the user id itself only
// lives in the store.
type SessionManager struct {
	store  SessionStore
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(store SessionStore, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{store: store, secret: []byte(secret), ttl: ttl, secure: secure, now: time.Now}
}

// Start creates a server-side session and returns the signed cookie value.
func (m *SessionManager) Start(ctx context.Context, userID uint) (string, error) {
	id := uuid.NewString()
	if err := m.store.Create(ctx, id, userID, m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Resolve returns the user id behind a cookie value.
func (m *SessionManager) Resolve(ctx context.Context, cookie string) (uint, error) {
	id, err := m.sessionID(cookie, true)
	if err != nil {
		return 0, err
	}
	return m.store.Lookup(ctx, id)
}

// End removes the server-side session. An expired cookie still identifies its session.
func (m *SessionManager) End(ctx context.Context, cookie string) error {
	id, err := m.sessionID(cookie, false)
	if err != nil {
		return err
	}
	return m.store.Delete(ctx, id)
}

func (m *SessionManager) sessionID(cookie string, validate bool) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(cookie, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || claims.ID == "" {
		return "", ErrNoSession
	}
	return claims.ID, nil
}

func (m *SessionManager) SetCookie(c *gin.Context, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
