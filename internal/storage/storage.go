package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrSourceNotFound is returned by Move when the origin object is absent.
	// A concurrent move may already have relocated it; callers treat this as
	// harmless where documents are independent.
	ErrSourceNotFound = errors.New("storage: source object not found")

	// ErrObjectNotFound is returned by Get for a missing object.
	ErrObjectNotFound = errors.New("storage: object not found")
)

// Storage maps relative paths (property-slug/category-slug/file-name) to bytes,
// independent of the physical backend. The backend is chosen once at startup;
// call sites never branch on it.
type Storage interface {
	// EnsureContainer idempotently creates the container (directory or key
	// prefix) for a property/category pair.
	EnsureContainer(ctx context.Context, container string) error

	// Save stores an object at the given relative path.
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get opens the object for reading.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Move relocates an object. Implemented as copy-then-delete so the
	// semantics are uniform across backends; fails with ErrSourceNotFound
	// when the origin does not exist.
	Move(ctx context.Context, oldPath, newPath string) error

	// Delete removes an object. Absent objects are not an error.
	Delete(ctx context.Context, path string) error

	// Exists checks whether an object is present.
	Exists(ctx context.Context, path string) (bool, error)

	// SignedURL returns a time-limited URL for downloading the object.
	SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Config holds storage configuration for both backends.
type Config struct {
	BasePath   string // local: root directory
	BaseURL    string // local: public URL base for signed paths
	SigningKey string // local: HMAC key for signed paths
	Bucket     string // object storage
	Region     string // object storage
	AccessKey  string // object storage
	SecretKey  string // object storage
	Endpoint   string // object storage (R2/Supabase/minio compatible)

	// RequireObject makes falling back to local mode a fatal
	// misconfiguration. Set for deployments without a writable disk.
	RequireObject bool
}

// objectConfigured reports whether all required object-storage settings are
// present.
func (c Config) objectConfigured() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// NewStorage selects the backend once at startup: object storage when fully
// configured, local filesystem otherwise.
func NewStorage(cfg Config) (Storage, error) {
	if cfg.objectConfigured() {
		return NewObjectStorage(cfg)
	}
	if cfg.RequireObject {
		return nil, errors.New("object storage is required but endpoint, credentials or bucket are missing")
	}
	return NewLocalStorage(cfg)
}
