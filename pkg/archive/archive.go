package archive

import (
	"context"
	"strings"
)

// Storage persists rendered quote documents and serves their public URLs.
type Storage interface {
	// Put stores a document under the given key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get fetches a stored document.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes a stored document.
	Delete(ctx context.Context, key string) error
	// Exists reports whether a document is stored under the key.
	Exists(ctx context.Context, key string) bool
	// URL returns the public URL for a key without touching the backend.
	URL(key string) string
}

// validateKey rejects empty keys and path traversal.
func validateKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return "", ErrInvalidKey
	}
	return key, nil
}
