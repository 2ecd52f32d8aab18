// Package blob abstracts the object storage holding receipts and tenant documents.
package blob

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var ErrNotFound = errors.New("blob not found")

// Object locates an uploaded artifact.
type Object struct {
	Bucket string
	Path   string
	URL    string
}

type Store interface {
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (Object, error)
	SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, bucket string, paths ...string) error
	// Download returns ErrNotFound when nothing is stored at path.
	Download(ctx context.Context, bucket, path string) ([]byte, error)
}

// CleanPath normalizes an object key and rejects keys escaping the bucket.
func CleanPath(p string) (string, error) {
	cleaned := path.Clean("/" + strings.TrimSpace(p))
	cleaned = strings.TrimPrefix(cleaned, "/")

	if cleaned == "" || cleaned == "." || strings.Contains(p, "..") {
		return "", fmt.Errorf("invalid object path %q", p)
	}

	return cleaned, nil
}
