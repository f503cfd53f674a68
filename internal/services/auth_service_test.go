package services

import (
	"context"
	"testing"
	"time"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, env *testEnv) AuthService {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", 15*time.Minute)
	require.NoError(t, err)
	return NewAuthService(env.userRepo, env.registry, tokens, "fazenda-norte")
}

func registerTestUser(t *testing.T, svc AuthService, env *testEnv, email string) {
	t.Helper()
	_, err := svc.Register(context.Background(), env.db, &dto.RegisterRequest{
		Name:     "Maria",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
}

func TestRegisterDefaultsRoleAndEntitlement(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)

	user, err := svc.Register(context.Background(), env.db, &dto.RegisterRequest{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "user", string(user.Role))
	assert.Equal(t, []string{"fazenda-norte"}, []string(user.Properties))
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "password123", user.PasswordHash, "password must be stored hashed")
}

func TestRegisterAdminStoresNoEntitlements(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)

	user, err := svc.Register(context.Background(), env.db, &dto.RegisterRequest{
		Name:       "Root",
		Email:      "root@example.com",
		Password:   "password123",
		Role:       "admin",
		Properties: []string{"should-be-dropped"},
	})
	require.NoError(t, err)

	assert.True(t, user.IsAdmin())
	assert.Empty(t, []string(user.Properties))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")

	_, err := svc.Register(context.Background(), env.db, &dto.RegisterRequest{
		Name:     "Other",
		Email:    "maria@example.com",
		Password: "password456",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")

	resp, err := svc.Login(context.Background(), env.db, &dto.LoginRequest{
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "maria@example.com", resp.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")

	_, err := svc.Login(context.Background(), env.db, &dto.LoginRequest{
		Email:    "maria@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)

	// Unknown email and wrong password answer identically.
	_, err := svc.Login(context.Background(), env.db, &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")
	ctx := context.Background()

	resp, err := svc.Login(ctx, env.db, &dto.LoginRequest{Email: "maria@example.com", Password: "password123"})
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, env.db, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, pair.RefreshToken)

	// The consumed token is single-use.
	_, err = svc.Refresh(ctx, env.db, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	// The replacement works.
	_, err = svc.Refresh(ctx, env.db, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)

	_, err := svc.Refresh(context.Background(), env.db, "never-issued")
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
}

func TestConcurrentSessionsStayValid(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")
	ctx := context.Background()

	first, err := svc.Login(ctx, env.db, &dto.LoginRequest{Email: "maria@example.com", Password: "password123"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, env.db, &dto.LoginRequest{Email: "maria@example.com", Password: "password123"})
	require.NoError(t, err)

	// A second login does not displace the first session.
	_, err = svc.Refresh(ctx, env.db, first.RefreshToken)
	assert.NoError(t, err)
	_, err = svc.Refresh(ctx, env.db, second.RefreshToken)
	assert.NoError(t, err)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(t, env)
	registerTestUser(t, svc, env, "maria@example.com")
	ctx := context.Background()

	resp, err := svc.Login(ctx, env.db, &dto.LoginRequest{Email: "maria@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.RefreshToken))
	_, err = svc.Refresh(ctx, env.db, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	// Logging out again is fine.
	assert.NoError(t, svc.Logout(ctx, resp.RefreshToken))
}
