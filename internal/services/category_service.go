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

type CategoryService interface {
	Create(ctx context.Context, db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error)
	// List returns categories visible to the principal, property-filtered for
	// regular users.
	List(db *gorm.DB, principal *models.User, propertyIDOrSlug string) ([]models.Category, error)
	Get(db *gorm.DB, principal *models.User, id string) (*models.Category, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error)
	Reorder(ctx context.Context, db *gorm.DB, req *dto.ReorderCategoriesRequest) error
	Delete(ctx context.Context, db *gorm.DB, id string) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
	propertyRepo repositories.PropertyRepository
	documentRepo repositories.DocumentRepository
	files        FileService
}

func NewCategoryService(
	categoryRepo repositories.CategoryRepository,
	propertyRepo repositories.PropertyRepository,
	documentRepo repositories.DocumentRepository,
	files FileService,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		propertyRepo: propertyRepo,
		documentRepo: documentRepo,
		files:        files,
	}
}

func (s *categoryService) resolveProperty(db *gorm.DB, idOrSlug string) (*models.Property, error) {
	property, err := s.propertyRepo.FindByIDOrSlug(db, idOrSlug)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPropertyNotFound) {
			return nil, apperrors.ErrPropertyNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	return property, nil
}

func (s *categoryService) Create(ctx context.Context, db *gorm.DB, req *dto.CreateCategoryRequest) (*models.Category, error) {
	property, err := s.resolveProperty(db, req.Property)
	if err != nil {
		return nil, err
	}

	slug := utils.Slugify(req.Name)
	if _, err := s.categoryRepo.FindByPropertyAndSlug(db, property.ID, slug); err == nil {
		return nil, apperrors.ErrCategoryExists
	} else if !apperrors.Is(err, repositories.ErrCategoryNotFound) {
		return nil, apperrors.InternalError(err)
	}

	order := models.DefaultCategoryOrder
	if req.Order != nil {
		order = *req.Order
	}

	category := &models.Category{
		Name:         req.Name,
		Slug:         slug,
		Description:  req.Description,
		PropertyID:   property.ID,
		PropertySlug: property.Slug,
		Order:        order,
	}
	if err := s.categoryRepo.Create(db, category); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.files.EnsureContainer(ctx, property.Slug, category.Slug); err != nil {
		logger.CtxWithError(ctx, "failed to create category container", err,
			"property", property.Slug, "category", category.Slug)
	}

	logger.CtxInfo(ctx, "category created", "property", property.Slug, "slug", category.Slug)
	return category, nil
}

func (s *categoryService) List(db *gorm.DB, principal *models.User, propertyIDOrSlug string) ([]models.Category, error) {
	if propertyIDOrSlug != "" {
		property, err := s.resolveProperty(db, propertyIDOrSlug)
		if err != nil {
			return nil, err
		}
		if !principal.CanAccessProperty(property.Slug) {
			return nil, apperrors.ErrPropertyNotFound
		}
		categories, err := s.categoryRepo.FindByProperty(db, property.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		return categories, nil
	}

	var (
		categories []models.Category
		err        error
	)
	if principal.IsAdmin() {
		categories, err = s.categoryRepo.FindAll(db)
	} else {
		categories, err = s.categoryRepo.FindByPropertySlugs(db, principal.Properties)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return categories, nil
}

func (s *categoryService) Get(db *gorm.DB, principal *models.User, id string) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !principal.CanAccessProperty(category.PropertySlug) {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	oldPropertySlug := category.PropertySlug
	oldSlug := category.Slug

	targetPropertyID := category.PropertyID
	targetPropertySlug := category.PropertySlug
	propertyChanged := false
	if req.Property != nil {
		property, err := s.resolveProperty(db, *req.Property)
		if err != nil {
			return nil, err
		}
		if property.ID != category.PropertyID {
			propertyChanged = true
			targetPropertyID = property.ID
			targetPropertySlug = property.Slug
		}
	}

	if req.Name != nil {
		category.Name = *req.Name
		category.Slug = utils.Slugify(*req.Name)
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	if propertyChanged || category.Slug != oldSlug {
		if existing, err := s.categoryRepo.FindByPropertyAndSlug(db, targetPropertyID, category.Slug); err == nil && existing.ID != category.ID {
			return nil, apperrors.ErrCategoryExists
		} else if err != nil && !apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.InternalError(err)
		}
	}

	if req.Order != nil {
		category.Order = *req.Order
	} else if propertyChanged {
		// Moving into another property appends the category after its current
		// ordered categories.
		max, err := s.categoryRepo.MaxOrder(db, targetPropertyID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		category.Order = max + 1
	}

	category.PropertyID = targetPropertyID
	category.PropertySlug = targetPropertySlug

	if propertyChanged || category.Slug != oldSlug {
		s.relocateDocuments(ctx, db, category, oldPropertySlug, oldSlug)
	}

	// The category row is written last: a crash mid-relocation leaves
	// documents with updated paths under a still-findable category.
	if err := s.categoryRepo.Update(db, category); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "category updated", "id", category.ID, "property", category.PropertySlug, "slug", category.Slug)
	return category, nil
}

// relocateDocuments moves every file of the category into its new container
// and rewrites each document's path fields. Per-document best effort: one
// missing file must not block the rest of the move.
func (s *categoryService) relocateDocuments(ctx context.Context, db *gorm.DB, category *models.Category, oldPropertySlug, oldSlug string) {
	if err := s.files.EnsureContainer(ctx, category.PropertySlug, category.Slug); err != nil {
		logger.CtxWithError(ctx, "failed to create container", err,
			"property", category.PropertySlug, "category", category.Slug)
	}

	documents, err := s.documentRepo.FindByCategory(db, category.ID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to list documents for relocation", err, "category_id", category.ID)
		return
	}

	for i := range documents {
		doc := &documents[i]
		newPath := s.files.Path(category.PropertySlug, category.Slug, doc.FileName)
		if err := s.files.Move(ctx, doc.FilePath, newPath); err != nil {
			logger.CtxWithError(ctx, "failed to move document file, skipping", err,
				"document_id", doc.ID, "from", doc.FilePath, "to", newPath)
			continue
		}
		doc.FilePath = newPath
		doc.PropertySlug = category.PropertySlug
		if err := s.documentRepo.Update(db, doc); err != nil {
			logger.CtxWithError(ctx, "failed to update document after move", err, "document_id", doc.ID)
		}
	}

	logger.CtxInfo(ctx, "category files relocated",
		"from", oldPropertySlug+"/"+oldSlug,
		"to", category.PropertySlug+"/"+category.Slug,
		"documents", len(documents))
}

func (s *categoryService) Reorder(ctx context.Context, db *gorm.DB, req *dto.ReorderCategoriesRequest) error {
	for _, item := range req.Categories {
		if err := s.categoryRepo.UpdateOrder(db, item.ID, item.Order); err != nil {
			if apperrors.Is(err, repositories.ErrCategoryNotFound) {
				return apperrors.ErrCategoryNotFound
			}
			return apperrors.InternalError(err)
		}
	}
	logger.CtxInfo(ctx, "categories reordered", "count", len(req.Categories))
	return nil
}

func (s *categoryService) Delete(ctx context.Context, db *gorm.DB, id string) error {
	category, err := s.categoryRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.InternalError(err)
	}

	count, err := s.categoryRepo.CountDocuments(db, category.ID)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if count > 0 {
		return apperrors.ErrCategoryHasChildren
	}

	if err := s.categoryRepo.Delete(db, category.ID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "category deleted", "property", category.PropertySlug, "slug", category.Slug)
	return nil
}
