package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type authTestEnv struct {
	db     *gorm.DB
	tokens *auth.TokenManager
	cache  *PrincipalCache
	router *gin.Engine
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	tokens, err := auth.NewTokenManager("test-secret", 15*time.Minute)
	require.NoError(t, err)

	cache := NewPrincipalCache(time.Minute)

	router := gin.New()
	router.Use(DBMiddleware(db))
	router.GET("/protected", AuthMiddleware(tokens, repositories.NewUserRepository(), cache), func(c *gin.Context) {
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"email": principal.Email})
	})
	router.GET("/admin", AuthMiddleware(tokens, repositories.NewUserRepository(), cache), AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return &authTestEnv{db: db, tokens: tokens, cache: cache, router: router}
}

func (e *authTestEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Name: "Test", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *authTestEnv) request(t *testing.T, target, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	env := newAuthTestEnv(t)

	rec := env.request(t, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, rec))
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	env := newAuthTestEnv(t)

	rec := env.request(t, "/protected", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, rec))
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "maria@example.com", models.UserRoleUser)

	// Tokens signed with the same secret but already past expiry.
	expiredTokens, err := auth.NewTokenManager("test-secret", time.Nanosecond)
	require.NoError(t, err)
	token, err := expiredTokens.Generate(user)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	rec := env.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCode(t, rec))
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "maria@example.com", models.UserRoleUser)

	token, err := env.tokens.Generate(user)
	require.NoError(t, err)

	rec := env.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maria@example.com")
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "maria@example.com", models.UserRoleUser)

	token, err := env.tokens.Generate(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "maria@example.com", models.UserRoleUser)

	token, err := env.tokens.Generate(user)
	require.NoError(t, err)

	// The token remains valid but the account is gone.
	require.NoError(t, env.db.Delete(&models.User{}, "id = ?", user.ID).Error)

	rec := env.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "USER_NOT_FOUND", errorCode(t, rec))
}

func TestAuthMiddlewareCacheInvalidation(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "maria@example.com", models.UserRoleUser)

	token, err := env.tokens.Generate(user)
	require.NoError(t, err)

	// Prime the cache, then delete the user. The cached principal still
	// answers until invalidated.
	rec := env.request(t, "/protected", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, env.db.Delete(&models.User{}, "id = ?", user.ID).Error)

	rec = env.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code, "cached principal is served within the TTL")

	env.cache.Invalidate(user.ID)
	rec = env.request(t, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminMiddleware(t *testing.T) {
	env := newAuthTestEnv(t)
	user := env.createUser(t, "user@example.com", models.UserRoleUser)
	admin := env.createUser(t, "admin@example.com", models.UserRoleAdmin)

	userToken, err := env.tokens.Generate(user)
	require.NoError(t, err)
	adminToken, err := env.tokens.Generate(admin)
	require.NoError(t, err)

	rec := env.request(t, "/admin", "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "ADMIN_REQUIRED", errorCode(t, rec))

	rec = env.request(t, "/admin", "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}
