package services

import (
	"context"

	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/internal/utils"
	"agrodocs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type PropertyService interface {
	Create(ctx context.Context, db *gorm.DB, req *dto.CreatePropertyRequest) (*models.Property, error)
	// List returns the properties visible to the principal: everything for
	// admins, entitled slugs only for regular users.
	List(db *gorm.DB, principal *models.User) ([]models.Property, error)
	Get(db *gorm.DB, principal *models.User, idOrSlug string) (*models.Property, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdatePropertyRequest) (*models.Property, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	categoryRepo repositories.CategoryRepository
	documentRepo repositories.DocumentRepository
	files        FileService
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	categoryRepo repositories.CategoryRepository,
	documentRepo repositories.DocumentRepository,
	files FileService,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		categoryRepo: categoryRepo,
		documentRepo: documentRepo,
		files:        files,
	}
}

func (s *propertyService) Create(ctx context.Context, db *gorm.DB, req *dto.CreatePropertyRequest) (*models.Property, error) {
	property := &models.Property{
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		property.Active = *req.Active
	}

	if err := s.propertyRepo.Create(db, property); err != nil {
		if apperrors.Is(err, repositories.ErrPropertyAlreadyExists) {
			return nil, apperrors.ErrPropertyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "property created", "slug", property.Slug)
	return property, nil
}

func (s *propertyService) List(db *gorm.DB, principal *models.User) ([]models.Property, error) {
	var (
		properties []models.Property
		err        error
	)
	if principal.IsAdmin() {
		properties, err = s.propertyRepo.FindAll(db)
	} else {
		properties, err = s.propertyRepo.FindBySlugs(db, principal.Properties)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return properties, nil
}

func (s *propertyService) Get(db *gorm.DB, principal *models.User, idOrSlug string) (*models.Property, error) {
	property, err := s.propertyRepo.FindByIDOrSlug(db, idOrSlug)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.ErrPropertyNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !principal.CanAccessProperty(property.Slug) {
		// Hidden, not forbidden: entitlements must not leak the inventory.
		return nil, apperrors.ErrPropertyNotFound
	}
	return property, nil
}

func (s *propertyService) Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdatePropertyRequest) (*models.Property, error) {
	property, err := s.propertyRepo.FindByIDOrSlug(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.ErrPropertyNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	oldSlug := property.Slug
	if req.Name != nil {
		property.Name = *req.Name
		property.Slug = utils.Slugify(*req.Name)
	}
	if req.Description != nil {
		property.Description = *req.Description
	}
	if req.Active != nil {
		property.Active = *req.Active
	}

	if property.Slug != oldSlug {
		if existing, err := s.propertyRepo.FindBySlug(db, property.Slug); err == nil && existing.ID != property.ID {
			return nil, apperrors.ErrPropertyExists
		}
		// Relocate files before the rename is persisted: a mid-failure must
		// leave documents pointing at objects that still exist.
		s.relocateDocuments(ctx, db, property.ID, oldSlug, property.Slug)
	}

	if err := s.propertyRepo.Update(db, property); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if property.Slug != oldSlug {
		if err := s.categoryRepo.UpdatePropertySlug(db, property.ID, property.Slug); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "property renamed", "old_slug", oldSlug, "new_slug", property.Slug)
	}

	return property, nil
}

// relocateDocuments moves every document file of the property into containers
// under the new slug and rewrites the documents' denormalized fields. Failures
// are per-document: one missing file must not strand the rest.
func (s *propertyService) relocateDocuments(ctx context.Context, db *gorm.DB, propertyID, oldSlug, newSlug string) {
	categories, err := s.categoryRepo.FindByProperty(db, propertyID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to list categories for relocation", err, "property_id", propertyID)
		return
	}

	for _, category := range categories {
		if err := s.files.EnsureContainer(ctx, newSlug, category.Slug); err != nil {
			logger.CtxWithError(ctx, "failed to create container", err, "property", newSlug, "category", category.Slug)
		}

		documents, err := s.documentRepo.FindByCategory(db, category.ID)
		if err != nil {
			logger.CtxWithError(ctx, "failed to list documents for relocation", err, "category_id", category.ID)
			continue
		}

		for i := range documents {
			doc := &documents[i]
			newPath := s.files.Path(newSlug, category.Slug, doc.FileName)
			if err := s.files.Move(ctx, doc.FilePath, newPath); err != nil {
				logger.CtxWithError(ctx, "failed to move document file, skipping", err,
					"document_id", doc.ID, "from", doc.FilePath, "to", newPath)
				continue
			}
			doc.FilePath = newPath
			doc.PropertySlug = newSlug
			if err := s.documentRepo.Update(db, doc); err != nil {
				logger.CtxWithError(ctx, "failed to update document after move", err, "document_id", doc.ID)
			}
		}
	}
}

func (s *propertyService) Delete(ctx context.Context, db *gorm.DB, id string) error {
	property, err := s.propertyRepo.FindByIDOrSlug(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return apperrors.ErrPropertyNotFound
		}
		return apperrors.InternalError(err)
	}

	// No cascade: deletion is blocked while categories reference the
	// property.
	count, err := s.propertyRepo.CountCategories(db, property.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if count > 0 {
		return apperrors.ErrPropertyHasChildren
	}

	if err := s.propertyRepo.Delete(db, property.ID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "property deleted", "slug", property.Slug)
	return nil
}
