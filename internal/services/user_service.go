package services

import (
	"context"
	"strings"

	"agrodocs_backend/internal/auth"
	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PrincipalInvalidator drops a cached principal after a user mutation so the
// auth middleware re-reads the record on the next request.
type PrincipalInvalidator interface {
	Invalidate(userID string)
}

type UserService interface {
	Create(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error)
	List(db *gorm.DB) ([]models.User, error)
	Get(db *gorm.DB, id string) (*models.User, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateUserRequest) (*models.User, error)
	// Delete removes a user. actorID is the authenticated caller; deleting
	// your own account is rejected.
	Delete(ctx context.Context, db *gorm.DB, actorID, id string) error
}

type userService struct {
	userRepo   repositories.UserRepository
	registry   repositories.RefreshTokenRegistry
	principals PrincipalInvalidator
}

func NewUserService(
	userRepo repositories.UserRepository,
	registry repositories.RefreshTokenRegistry,
	principals PrincipalInvalidator,
) UserService {
	return &userService{
		userRepo:   userRepo,
		registry:   registry,
		principals: principals,
	}
}

func (s *userService) Create(ctx context.Context, db *gorm.DB, req *dto.CreateUserRequest) (*models.User, error) {
	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleUser
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	properties := req.Properties
	if role == models.UserRoleAdmin {
		properties = nil
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
	return user, nil
}

func (s *userService) List(db *gorm.DB) ([]models.User, error) {
	users, err := s.userRepo.FindAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return users, nil
}

func (s *userService) Get(db *gorm.DB, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserRecordNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserRecordNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = models.UserRole(*req.Role)
	}
	if req.Properties != nil {
		user.Properties = datatypes.NewJSONSlice(req.Properties)
	}
	if user.Role == models.UserRoleAdmin {
		user.Properties = nil
	}

	if req.Password != nil {
		// Password changes always re-hash and kill existing sessions.
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.PasswordHash = hashed
		if err := s.registry.RevokeAllForUser(ctx, user.ID); err != nil {
			logger.CtxWithError(ctx, "failed to revoke sessions after password change", err, "user_id", user.ID)
		}
	}

	if err := s.userRepo.Update(db, user); err != nil {
		if isUniqueViolationErr(err) {
			return nil, apperrors.ErrUserExists
		}
		return nil, apperrors.InternalError(err)
	}

	if s.principals != nil {
		s.principals.Invalidate(user.ID)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, db *gorm.DB, actorID, id string) error {
	if actorID == id {
		return apperrors.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrUserRecordNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.registry.RevokeAllForUser(ctx, id); err != nil {
		logger.CtxWithError(ctx, "failed to revoke sessions of deleted user", err, "user_id", id)
	}
	if s.principals != nil {
		s.principals.Invalidate(id)
	}

	logger.CtxInfo(ctx, "user deleted", "user_id", id, "deleted_by", actorID)
	return nil
}

func isUniqueViolationErr(err error) bool {
	if err == nil {
		return false
	}
	if apperrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
