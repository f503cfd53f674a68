package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"agrodocs_backend/internal/storage"
	"agrodocs_backend/internal/utils"
)

// DefaultURLTTL is how long resolved download URLs stay valid.
const DefaultURLTTL = time.Hour

// SavedFile describes where a stored object ended up.
type SavedFile struct {
	StoredName   string
	RelativePath string
}

// FileService keeps logical (property-slug, category-slug, filename) locations
// consistent on top of whichever Storage backend was selected at startup.
type FileService interface {
	EnsureContainer(ctx context.Context, propertySlug, categorySlug string) error
	Save(ctx context.Context, reader io.Reader, contentType, propertySlug, categorySlug, originalName string) (*SavedFile, error)
	Move(ctx context.Context, oldRelativePath, newRelativePath string) error
	Delete(ctx context.Context, relativePath string) error
	Open(ctx context.Context, relativePath string) (io.ReadCloser, error)
	// ResolveURL returns a time-limited download URL regardless of backend.
	ResolveURL(ctx context.Context, relativePath string) (string, time.Time, error)
	// Path builds the relative path for a document, re-normalizing every
	// segment.
	Path(propertySlug, categorySlug, fileName string) string
}

type fileService struct {
	storage storage.Storage
	urlTTL  time.Duration
}

func NewFileService(st storage.Storage, urlTTL time.Duration) FileService {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &fileService{storage: st, urlTTL: urlTTL}
}

func (s *fileService) Path(propertySlug, categorySlug, fileName string) string {
	// Slugs are re-normalized even when they already look like slugs; case
	// drift in denormalized references must never produce a second container.
	return fmt.Sprintf("%s/%s/%s",
		utils.Slugify(propertySlug),
		utils.Slugify(categorySlug),
		utils.NormalizeFileName(fileName),
	)
}

func (s *fileService) container(propertySlug, categorySlug string) string {
	return utils.Slugify(propertySlug) + "/" + utils.Slugify(categorySlug)
}

func (s *fileService) EnsureContainer(ctx context.Context, propertySlug, categorySlug string) error {
	return s.storage.EnsureContainer(ctx, s.container(propertySlug, categorySlug))
}

func (s *fileService) Save(ctx context.Context, reader io.Reader, contentType, propertySlug, categorySlug, originalName string) (*SavedFile, error) {
	storedName := utils.NormalizeFileName(originalName)
	relativePath := s.container(propertySlug, categorySlug) + "/" + storedName

	if err := s.storage.EnsureContainer(ctx, s.container(propertySlug, categorySlug)); err != nil {
		return nil, err
	}
	if err := s.storage.Save(ctx, relativePath, reader, contentType); err != nil {
		return nil, err
	}

	return &SavedFile{StoredName: storedName, RelativePath: relativePath}, nil
}

func (s *fileService) Move(ctx context.Context, oldRelativePath, newRelativePath string) error {
	// Destination container first: Move on the local backend would create
	// parents anyway, but the object backend has nothing to create and the
	// contract promises the container exists before the copy starts.
	if dir := parentContainer(newRelativePath); dir != "" {
		if err := s.storage.EnsureContainer(ctx, dir); err != nil {
			return err
		}
	}
	return s.storage.Move(ctx, oldRelativePath, newRelativePath)
}

func (s *fileService) Delete(ctx context.Context, relativePath string) error {
	return s.storage.Delete(ctx, relativePath)
}

func (s *fileService) Open(ctx context.Context, relativePath string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, relativePath)
}

func (s *fileService) ResolveURL(ctx context.Context, relativePath string) (string, time.Time, error) {
	url, err := s.storage.SignedURL(ctx, relativePath, s.urlTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return url, time.Now().Add(s.urlTTL), nil
}

func parentContainer(relativePath string) string {
	idx := strings.LastIndex(relativePath, "/")
	if idx <= 0 {
		return ""
	}
	return relativePath[:idx]
}
