package services

import (
	"context"
	"time"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RefreshTokenTTL is the lifetime of a refresh token from issuance.
const RefreshTokenTTL = 7 * 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// Refresh rotates the refresh token: the presented one is consumed and a
	// new pair is issued. A rotated-out token is rejected on reuse.
	Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.TokenPairResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo    repositories.UserRepository
	registry    repositories.RefreshTokenRegistry
	tokens      *auth.TokenManager
	defaultProp string
}

// NewAuthService wires the credential store, the refresh-token registry and
// the token issuer. defaultProperty is the entitlement granted to regular
// users registered without one.
func NewAuthService(
	userRepo repositories.UserRepository,
	registry repositories.RefreshTokenRegistry,
	tokens *auth.TokenManager,
	defaultProperty string,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		registry:    registry,
		tokens:      tokens,
		defaultProp: defaultProperty,
	}
}

func (s *authService) Register(ctx context.Context, db *gorm.DB, req *dto.RegisterRequest) (*models.User, error) {
	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleUser
	}

	properties := req.Properties
	switch role {
	case models.UserRoleAdmin:
		// Admins see everything; stored entitlements would only mislead.
		properties = nil
	case models.UserRoleUser:
		if len(properties) == 0 && s.defaultProp != "" {
			properties = []string{s.defaultProp}
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         role,
		Properties:   datatypes.NewJSONSlice(properties),
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "email", user.Email, "role", user.Role)
	return user, nil
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	// No tokens are issued and the registry is untouched on a bad password.
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return &dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

func (s *authService) Refresh(ctx context.Context, db *gorm.DB, refreshToken string) (*dto.TokenPairResponse, error) {
	entry, err := s.registry.Lookup(ctx, refreshToken)
	if err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrRefreshTokenExpired):
			return nil, apperrors.ErrExpiredRefreshToken
		case apperrors.Is(err, repositories.ErrRefreshTokenNotFound):
			return nil, apperrors.ErrInvalidRefreshToken
		default:
			return nil, apperrors.InternalError(err)
		}
	}

	user, err := s.userRepo.FindByID(db, entry.UserID)
	if err != nil {
		// The account is gone; the session dies with it.
		return nil, apperrors.ErrInvalidRefreshToken
	}

	// Rotation: consume the presented token before the replacement exists.
	if err := s.registry.Revoke(ctx, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.CtxDebug(ctx, "refresh token rotated", "user_id", user.ID)
	return pair, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	// Revoke is idempotent; logging out twice is not an error.
	if err := s.registry.Revoke(ctx, refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issueTokenPair(ctx context.Context, user *models.User) (*dto.TokenPairResponse, error) {
	accessToken, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refreshToken, err := auth.NewRefreshToken()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Prior refresh tokens stay valid: concurrent sessions are allowed.
	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := s.registry.Record(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
