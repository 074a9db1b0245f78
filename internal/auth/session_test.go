package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewSessionManager(NewMemorySessionStore(), "secret", time.Hour, false)

	cookie, err := m.Start(ctx, 9)
	require.NoError(t, err)

	uid, err := m.Resolve(ctx, cookie)
	require.NoError(t, err)
	assert.Equal(t, uint(9), uid)

	require.NoError(t, m.End(ctx, cookie))
	_, err = m.Resolve(ctx, cookie)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionRejectsForgedCookie(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	good := NewSessionManager(store, "secret", time.Hour, false)
	forger := NewSessionManager(store, "guessed", time.Hour, false)

	cookie, err := forger.Start(ctx, 1)
	require.NoError(t, err)

	_, err = good.Resolve(ctx, cookie)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = good.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemorySessionStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Create(ctx, "abc", 3, time.Minute))
	uid, err := store.Lookup(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(3), uid)

	now = now.Add(2 * time.Minute)
	_, err = store.Lookup(ctx, "abc")
	assert.ErrorIs(t, err, ErrNoSession)
}
