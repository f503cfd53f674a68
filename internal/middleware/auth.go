package middleware

import (
	"sync"
	"time"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/pkg/apperrors"
	"agrodocs_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// AuthCookieName is the non-HttpOnly access token cookie set at login.
	AuthCookieName = "authToken"
	principalKey   = "principal"
	userIDKey      = "userID"
)

// DefaultPrincipalTTL bounds how stale a cached principal may be. Role or
// entitlement changes take at most this long to reach requests that were not
// explicitly invalidated.
const DefaultPrincipalTTL = 30 * time.Second

type principalEntry struct {
	user      *models.User
	expiresAt time.Time
}

// PrincipalCache is a small TTL cache of authenticated users, keyed by id.
// User mutations call Invalidate so revoked access never outlives the TTL.
type PrincipalCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]principalEntry
}

func NewPrincipalCache(ttl time.Duration) *PrincipalCache {
	if ttl <= 0 {
		ttl = DefaultPrincipalTTL
	}
	return &PrincipalCache{ttl: ttl, entries: make(map[string]principalEntry)}
}

func (c *PrincipalCache) get(id string) (*models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, id)
		return nil, false
	}
	return entry.user, true
}

func (c *PrincipalCache) put(user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[user.ID] = principalEntry{user: user, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops a cached principal. Safe to call with unknown ids.
func (c *PrincipalCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// AuthMiddleware authenticates requests with a bearer token, falling back to
// the auth cookie. The principal is re-read from the database (through the
// cache) so deleted users are cut off even with a still-valid token.
func AuthMiddleware(tokens *auth.TokenManager, users repositories.UserRepository, cache *PrincipalCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			if cookie, err := c.Cookie(AuthCookieName); err == nil {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			abortWithError(c, apperrors.ErrMissingToken)
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			if apperrors.Is(err, auth.ErrTokenExpired) {
				abortWithError(c, apperrors.ErrTokenExpired)
			} else {
				abortWithError(c, apperrors.ErrInvalidToken)
			}
			return
		}

		user, ok := cache.get(claims.UserID)
		if !ok {
			db := dbFromContext(c)
			user, err = users.FindByID(db, claims.UserID)
			if err != nil {
				if apperrors.Is(err, repositories.ErrUserNotFound) {
					abortWithError(c, apperrors.ErrUserNotFound)
				} else {
					abortWithError(c, apperrors.InternalError(err))
				}
				return
			}
			cache.put(user)
		}

		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(userIDKey, user.ID)
		c.Set("role", string(user.Role))
		c.Set(principalKey, user)
		c.Next()
	}
}

// AdminMiddleware allows admins only. Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, apperrors.ErrMissingToken)
			return
		}
		if !principal.IsAdmin() {
			abortWithError(c, apperrors.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

// GetPrincipal returns the authenticated user set by AuthMiddleware.
func GetPrincipal(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get(principalKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}

// GetUserID returns the authenticated user's id, or "".
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}
	id, ok := userID.(string)
	if !ok {
		return ""
	}
	return id
}

func dbFromContext(c *gin.Context) *gorm.DB {
	val, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		panic("critical error: DBMiddleware did not set the db key")
	}
	db, ok := val.(*gorm.DB)
	if !ok {
		panic("critical error: db in context has incorrect type")
	}
	return db
}

func abortWithError(c *gin.Context, err error) {
	apperrors.HandleError(c, err)
	c.Abort()
}
