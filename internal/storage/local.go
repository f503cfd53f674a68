package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage implements Storage on the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
	signer   *URLSigner
}

// NewLocalStorage creates a local storage instance rooted at cfg.BasePath.
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "./uploads"
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/api/v1/files"
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		signer:   NewURLSigner(cfg.SigningKey),
	}, nil
}

// Signer exposes the URL signer so the file-serving handler can verify
// signed paths.
func (s *LocalStorage) Signer() *URLSigner {
	return s.signer
}

// fullPath resolves a relative object path under the base directory and
// rejects anything that would escape it.
func (s *LocalStorage) fullPath(path string) (string, error) {
	full := filepath.Join(s.basePath, filepath.FromSlash(path))
	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if abs != base && !strings.HasPrefix(abs, base+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes storage root", path)
	}
	return full, nil
}

// EnsureContainer creates the directory for a container. Creating an existing
// directory is a no-op.
func (s *LocalStorage) EnsureContainer(ctx context.Context, container string) error {
	full, err := s.fullPath(container)
	if err != nil {
		return err
	}
	return os.MkdirAll(full, 0o755)
}

// Save stores an object, creating parent directories as needed.
func (s *LocalStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Get opens an object for reading.
func (s *LocalStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Move copies the object to its new path, then deletes the origin. Not an
// atomic rename: the copy-then-delete sequence keeps Move semantics identical
// to the object-storage backend.
func (s *LocalStorage) Move(ctx context.Context, oldPath, newPath string) error {
	src, err := s.Get(ctx, oldPath)
	if err != nil {
		if err == ErrObjectNotFound {
			return ErrSourceNotFound
		}
		return err
	}
	defer src.Close()

	if err := s.Save(ctx, newPath, src, ""); err != nil {
		return err
	}
	return s.Delete(ctx, oldPath)
}

// Delete removes an object. A missing object is not an error.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	full, err := s.fullPath(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks for an object on disk.
func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	full, err := s.fullPath(path)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SignedURL returns an HMAC-signed download path served by the API's file
// handler, mirroring the presigned-URL contract of the object backend.
func (s *LocalStorage) SignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	exp, sig := s.signer.Sign(path, expiry)
	q := url.Values{}
	q.Set("exp", fmt.Sprintf("%d", exp))
	q.Set("sig", sig)
	return fmt.Sprintf("%s/%s?%s", s.baseURL, path, q.Encode()), nil
}
