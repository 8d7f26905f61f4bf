package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage implements Storage on the local filesystem for
// development and tests.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage stores documents under dir and builds URLs from
// baseURL.
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") && baseURL != "" {
		baseURL += "/"
	}
	return &LocalStorage{dir: dir, baseURL: baseURL}
}

func (l *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key, err := validateKey(key)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	path := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Join(ErrFailedToStore, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Join(ErrFailedToStore, err)
	}
	return l.URL(key), nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.dir, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrFailedToFetch, err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(key))); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Join(ErrFailedToDelete, err)
	}
	return nil
}

func (l *LocalStorage) Exists(ctx context.Context, key string) bool {
	key, err := validateKey(key)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(filepath.Join(l.dir, filepath.FromSlash(key)))
	return statErr == nil
}

func (l *LocalStorage) URL(key string) string {
	return l.baseURL + strings.TrimPrefix(key, "/")
}
