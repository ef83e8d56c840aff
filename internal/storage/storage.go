package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"foodgram_backend/internal/config"
)

var (
	ErrNotFound   = errors.New("file not found")
	ErrInvalidKey = errors.New("invalid storage key")
)

// Storage stores uploaded media under slash-separated keys such as
// "recipes/<uuid>.png".
type Storage interface {
	// Save stores a file under key, replacing any existing one
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get opens a stored file. Returns ErrNotFound when it is missing
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Missing files are not an error
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public address of a stored file
	URL(key string) string

	// Backend names the implementation for logs and metrics
	Backend() string
}

// NewStorage creates a storage backend from configuration.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanKey normalizes a key and rejects ones escaping the storage root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
