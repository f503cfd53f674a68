package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*redisRefreshTokenRegistry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	registry := NewRefreshTokenRegistry(client).(*redisRefreshTokenRegistry)
	return registry, mr
}

func TestRegistryRecordAndLookup(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, registry.Record(ctx, "tok-1", "user-1", expiresAt))

	entry, err := registry.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", entry.UserID)
	assert.WithinDuration(t, expiresAt, entry.ExpiresAt, time.Second)
}

func TestRegistryLookupUnknownToken(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Lookup(context.Background(), "never-issued")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRegistryExpiredIsNotInvalid(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Record(ctx, "tok-1", "user-1", time.Now().Add(time.Hour)))
	registry.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := registry.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)

	// The lazy delete has consumed the entry; a second lookup is not-found.
	_, err = registry.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRegistryExpiryBoundary(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	// One instant before expiry the token is live.
	require.NoError(t, registry.Record(ctx, "tok-before", "user-1", expiresAt))
	registry.now = func() time.Time { return expiresAt.Add(-time.Millisecond) }
	_, err := registry.Lookup(ctx, "tok-before")
	assert.NoError(t, err)

	// At the exact expiry instant it is already expired.
	require.NoError(t, registry.Record(ctx, "tok-at", "user-1", expiresAt))
	registry.now = func() time.Time { return expiresAt }
	_, err = registry.Lookup(ctx, "tok-at")
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestRegistryRevokeIdempotent(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, registry.Record(ctx, "tok-1", "user-1", time.Now().Add(time.Hour)))
	require.NoError(t, registry.Revoke(ctx, "tok-1"))
	require.NoError(t, registry.Revoke(ctx, "tok-1"))
	require.NoError(t, registry.Revoke(ctx, "never-issued"))

	_, err := registry.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRegistryRevokeAllForUser(t *testing.T) {
	registry, _ := newTestRegistry(t)
	ctx := context.Background()

	expiresAt := time.Now().Add(time.Hour)
	require.NoError(t, registry.Record(ctx, "tok-1", "user-1", expiresAt))
	require.NoError(t, registry.Record(ctx, "tok-2", "user-1", expiresAt))
	require.NoError(t, registry.Record(ctx, "tok-other", "user-2", expiresAt))

	require.NoError(t, registry.RevokeAllForUser(ctx, "user-1"))

	_, err := registry.Lookup(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	_, err = registry.Lookup(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	// Other users' sessions are untouched.
	_, err = registry.Lookup(ctx, "tok-other")
	assert.NoError(t, err)
}
