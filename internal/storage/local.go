package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under a directory and serves them from BaseURL.
// It backs development setups without object storage; the HTTP server mounts
// Dir at the path of BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates a LocalStore.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Upload implements Store.
func (s *LocalStore) Upload(_ context.Context, objectPath string, data []byte, contentType string) (Object, error) {
	clean := filepath.Clean("/" + objectPath)[1:]
	if clean == "" {
		return Object{}, &UploadError{Path: objectPath, Message: "empty object path"}
	}

	target := filepath.Join(s.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, &UploadError{Path: clean, Message: "failed to create directory", Cause: err}
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Object{}, &UploadError{Path: clean, Message: "failed to write file", Cause: err}
	}

	return Object{
		Path:        clean,
		URL:         fmt.Sprintf("%s/%s", s.BaseURL, filepath.ToSlash(clean)),
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete implements Store.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok {
		return nil
	}
	clean := filepath.Clean("/" + rel)[1:]
	if clean == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(clean))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", clean, err)
	}
	return nil
}
