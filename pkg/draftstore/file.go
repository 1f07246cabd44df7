package draftstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per draft key inside a directory.
// It plays the role of browser local storage for terminal sessions.
type FileStore struct {
	dir      string
	maxBytes int
}

// NewFileStore creates the directory if needed. maxBytes <= 0 disables the quota.
func NewFileStore(dir string, maxBytes int) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("draft directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create draft directory: %w", err)
	}
	return &FileStore{dir: dir, maxBytes: maxBytes}, nil
}

// Dir returns the backing directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Get reads the draft for key
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	return data, nil
}

// Put writes the draft atomically (temp file + rename)
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if s.maxBytes > 0 && len(value) > s.maxBytes {
		return ErrQuotaExceeded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("failed to create temp draft: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write draft: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close draft: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to store draft: %w", err)
	}
	return nil
}

// Delete removes the draft; a missing file is not an error
func (s *FileStore) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	return filepath.Join(s.dir, url.PathEscape(key)+".json"), nil
}
