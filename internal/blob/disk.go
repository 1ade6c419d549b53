package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects under a local bucket directory. Used for
// development and tests.
type DiskStore struct {
	dir     string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at dir. baseURL is prepended when
// composing public URLs.
func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *DiskStore) Upload(_ context.Context, path string, data []byte, opts UploadOptions) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if !opts.Upsert {
		if _, err := os.Stat(full); err == nil {
			return "", fmt.Errorf("%s: %w", path, ErrExists)
		}
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *DiskStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (s *DiskStore) Remove(_ context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		full, err := s.resolve(p)
		if err == nil {
			err = os.Remove(full)
		}
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolve rejects paths escaping the bucket directory.
func (s *DiskStore) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("empty object path")
	}
	return filepath.Join(s.dir, clean), nil
}
