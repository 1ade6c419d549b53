package blob

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"resty.dev/v3"
)

// HTTPStore talks to a hosted storage API exposing
// POST/DELETE /object/{bucket}/{path} and public objects under
// /object/public/{bucket}/{path}.
type HTTPStore struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

// NewHTTPStore creates an HTTPStore for the given base URL and bucket.
// token, when non-empty, is sent as a bearer token.
func NewHTTPStore(baseURL, bucket, token string) *HTTPStore {
	client := resty.New().SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	if token != "" {
		client.SetAuthToken(token)
	}
	return &HTTPStore{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
	}
}

// Close releases the underlying HTTP client resources.
func (s *HTTPStore) Close() error {
	return s.client.Close()
}

func (s *HTTPStore) Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (string, error) {
	req := s.client.R().
		WithContext(ctx).
		SetHeader("Content-Type", opts.ContentType).
		SetBody(data)
	if opts.Upsert {
		req.SetHeader("x-upsert", "true")
	}

	res, err := req.Post(s.objectPath(path))
	if err != nil {
		return "", err
	}
	switch {
	case res.StatusCode() == http.StatusConflict:
		return "", fmt.Errorf("%s: %w", path, ErrExists)
	case res.IsError():
		return "", fmt.Errorf("upload %s: unexpected status %d", path, res.StatusCode())
	}
	return path, nil
}

func (s *HTTPStore) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, strings.TrimPrefix(path, "/"))
}

func (s *HTTPStore) Remove(ctx context.Context, paths ...string) error {
	var firstErr error
	for _, p := range paths {
		res, err := s.client.R().WithContext(ctx).Delete(s.objectPath(p))
		if err == nil && res.IsError() && res.StatusCode() != http.StatusNotFound {
			err = fmt.Errorf("remove %s: unexpected status %d", p, res.StatusCode())
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *HTTPStore) objectPath(path string) string {
	return fmt.Sprintf("/object/%s/%s", s.bucket, strings.TrimPrefix(path, "/"))
}
