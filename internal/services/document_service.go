package services

import (
	"context"
	"mime/multipart"

	"agrodocs_backend/internal/logger"
	"agrodocs_backend/internal/models"
	"agrodocs_backend/internal/repositories"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type DocumentService interface {
	Upload(ctx context.Context, db *gorm.DB, uploader *models.User, req *dto.UploadDocumentRequest, file *multipart.FileHeader) (*models.Document, error)
	// List returns documents visible to the principal, optionally filtered to
	// one category.
	List(db *gorm.DB, principal *models.User, categoryID string) ([]models.Document, error)
	ListHighlighted(db *gorm.DB, principal *models.User) ([]models.Document, error)
	Get(db *gorm.DB, principal *models.User, id string) (*models.Document, error)
	Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateDocumentRequest) (*models.Document, error)
	Delete(ctx context.Context, db *gorm.DB, id string) error
	// Download resolves a time-limited URL; it never streams file bytes itself.
	Download(ctx context.Context, db *gorm.DB, principal *models.User, id string) (*dto.DownloadResponse, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	categoryRepo repositories.CategoryRepository
	files        FileService
}

func NewDocumentService(
	documentRepo repositories.DocumentRepository,
	categoryRepo repositories.CategoryRepository,
	files FileService,
) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		categoryRepo: categoryRepo,
		files:        files,
	}
}

func (s *documentService) Upload(ctx context.Context, db *gorm.DB, uploader *models.User, req *dto.UploadDocumentRequest, file *multipart.FileHeader) (*models.Document, error) {
	category, err := s.categoryRepo.FindByID(db, req.CategoryID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.NewBadRequestError("cannot read uploaded file")
	}
	defer src.Close()

	saved, err := s.files.Save(ctx, src, file.Header.Get("Content-Type"),
		category.PropertySlug, category.Slug, file.Filename)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}

	document := &models.Document{
		Title:            req.Title,
		Description:      req.Description,
		FileName:         saved.StoredName,
		OriginalFileName: file.Filename,
		FileSize:         file.Size,
		FileType:         file.Header.Get("Content-Type"),
		FilePath:         saved.RelativePath,
		CategoryID:       category.ID,
		PropertySlug:     category.PropertySlug,
		UploadedByID:     uploader.ID,
		IsHighlighted:    req.IsHighlighted,
	}
	if err := s.documentRepo.Create(db, document); err != nil {
		// Orphaned objects are cleaned up, the row is the source of truth.
		if delErr := s.files.Delete(ctx, saved.RelativePath); delErr != nil {
			logger.CtxWithError(ctx, "failed to clean up orphaned upload", delErr, "path", saved.RelativePath)
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "document uploaded",
		"id", document.ID, "path", document.FilePath, "size", document.FileSize)
	return document, nil
}

func (s *documentService) List(db *gorm.DB, principal *models.User, categoryID string) ([]models.Document, error) {
	if categoryID != "" {
		category, err := s.categoryRepo.FindByID(db, categoryID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrCategoryNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.InternalError(err)
		}
		if !principal.CanAccessProperty(category.PropertySlug) {
			return nil, apperrors.ErrCategoryNotFound
		}
		documents, err := s.documentRepo.FindByCategory(db, category.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		return documents, nil
	}

	var (
		documents []models.Document
		err       error
	)
	if principal.IsAdmin() {
		documents, err = s.documentRepo.FindAll(db)
	} else {
		documents, err = s.documentRepo.FindByPropertySlugs(db, principal.Properties)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return documents, nil
}

func (s *documentService) ListHighlighted(db *gorm.DB, principal *models.User) ([]models.Document, error) {
	var slugs []string
	if !principal.IsAdmin() {
		slugs = principal.Properties
		if len(slugs) == 0 {
			return []models.Document{}, nil
		}
	}
	documents, err := s.documentRepo.FindHighlighted(db, slugs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return documents, nil
}

func (s *documentService) Get(db *gorm.DB, principal *models.User, id string) (*models.Document, error) {
	document, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDocumentNotFound) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if !principal.CanAccessProperty(document.PropertySlug) {
		return nil, apperrors.ErrDocumentNotFound
	}
	return document, nil
}

func (s *documentService) Update(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateDocumentRequest) (*models.Document, error) {
	document, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDocumentNotFound) {
			return nil, apperrors.ErrDocumentNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Title != nil {
		document.Title = *req.Title
	}
	if req.Description != nil {
		document.Description = *req.Description
	}
	if req.IsHighlighted != nil {
		document.IsHighlighted = *req.IsHighlighted
	}

	if req.CategoryID != nil && *req.CategoryID != document.CategoryID {
		category, err := s.categoryRepo.FindByID(db, *req.CategoryID)
		if err != nil {
			if apperrors.Is(err, repositories.ErrCategoryNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.InternalError(err)
		}

		newPath := s.files.Path(category.PropertySlug, category.Slug, document.FileName)
		if err := s.files.Move(ctx, document.FilePath, newPath); err != nil {
			return nil, apperrors.StorageError(err)
		}
		document.FilePath = newPath
		document.CategoryID = category.ID
		document.PropertySlug = category.PropertySlug
	}

	if err := s.documentRepo.Update(db, document); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "document updated", "id", document.ID, "path", document.FilePath)
	return document, nil
}

func (s *documentService) Delete(ctx context.Context, db *gorm.DB, id string) error {
	document, err := s.documentRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrDocumentNotFound) {
			return apperrors.ErrDocumentNotFound
		}
		return apperrors.InternalError(err)
	}

	if err := s.documentRepo.Delete(db, document.ID); err != nil {
		return apperrors.InternalError(err)
	}

	// The row is gone, file removal is best effort.
	if err := s.files.Delete(ctx, document.FilePath); err != nil {
		logger.CtxWithError(ctx, "failed to delete document file", err, "path", document.FilePath)
	}

	logger.CtxInfo(ctx, "document deleted", "id", document.ID)
	return nil
}

func (s *documentService) Download(ctx context.Context, db *gorm.DB, principal *models.User, id string) (*dto.DownloadResponse, error) {
	document, err := s.Get(db, principal, id)
	if err != nil {
		return nil, err
	}

	url, expiresAt, err := s.files.ResolveURL(ctx, document.FilePath)
	if err != nil {
		return nil, apperrors.StorageError(err)
	}

	return &dto.DownloadResponse{URL: url, ExpiresAt: expiresAt.Unix()}, nil
}
