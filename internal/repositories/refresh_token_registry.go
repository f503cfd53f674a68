package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRefreshTokenNotFound - the token was never issued, already rotated,
	// or revoked.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired - the token existed but its expiry has passed.
	// Distinct from not-found so clients can be told to log in again rather
	// than being treated as hostile.
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)

const (
	refreshKeyPrefix  = "refresh:"
	refreshUserPrefix = "refresh_user:"

	// expiredEntryGrace keeps expired entries around past their logical
	// expiry. Without it Redis would evict exactly at the expiry instant and
	// an expired token would be indistinguishable from an invalid one.
	expiredEntryGrace = 24 * time.Hour
)

// RefreshTokenEntry is the server-side record for one issued refresh token.
type RefreshTokenEntry struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RefreshTokenRegistry tracks issued refresh tokens in a shared keyed store so
// revocation survives restarts and works across server instances.
type RefreshTokenRegistry interface {
	Record(ctx context.Context, token, userID string, expiresAt time.Time) error
	// Lookup returns the entry for a live token. Expired entries are deleted
	// lazily and reported as ErrRefreshTokenExpired; absent ones as
	// ErrRefreshTokenNotFound.
	Lookup(ctx context.Context, token string) (*RefreshTokenEntry, error)
	// Revoke deletes a token. Idempotent: revoking an absent token succeeds.
	Revoke(ctx context.Context, token string) error
	// RevokeAllForUser drops every session of a user (password change).
	RevokeAllForUser(ctx context.Context, userID string) error
}

type redisRefreshTokenRegistry struct {
	client *redis.Client
	now    func() time.Time
}

func NewRefreshTokenRegistry(client *redis.Client) RefreshTokenRegistry {
	return &redisRefreshTokenRegistry{
		client: client,
		now:    time.Now,
	}
}

func (r *redisRefreshTokenRegistry) Record(ctx context.Context, token, userID string, expiresAt time.Time) error {
	entry := RefreshTokenEntry{UserID: userID, ExpiresAt: expiresAt}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	ttl := expiresAt.Add(expiredEntryGrace).Sub(r.now())
	if ttl <= 0 {
		ttl = time.Minute
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, refreshKeyPrefix+token, payload, ttl)
	pipe.SAdd(ctx, refreshUserPrefix+userID, token)
	pipe.Expire(ctx, refreshUserPrefix+userID, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRefreshTokenRegistry) Lookup(ctx context.Context, token string) (*RefreshTokenEntry, error) {
	payload, err := r.client.Get(ctx, refreshKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	var entry RefreshTokenEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, err
	}

	// A token is live only strictly before its expiry: at the exact expiry
	// instant it is already expired.
	if !r.now().Before(entry.ExpiresAt) {
		if err := r.Revoke(ctx, token); err != nil {
			return nil, err
		}
		return nil, ErrRefreshTokenExpired
	}
	return &entry, nil
}

func (r *redisRefreshTokenRegistry) Revoke(ctx context.Context, token string) error {
	payload, err := r.client.Get(ctx, refreshKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	var entry RefreshTokenEntry
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, refreshKeyPrefix+token)
	if json.Unmarshal(payload, &entry) == nil && entry.UserID != "" {
		pipe.SRem(ctx, refreshUserPrefix+entry.UserID, token)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *redisRefreshTokenRegistry) RevokeAllForUser(ctx context.Context, userID string) error {
	tokens, err := r.client.SMembers(ctx, refreshUserPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	pipe := r.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, refreshKeyPrefix+token)
	}
	pipe.Del(ctx, refreshUserPrefix+userID)
	_, err = pipe.Exec(ctx)
	return err
}
