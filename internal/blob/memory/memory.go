// Package memory keeps blobs in process memory. It backs tests and throwaway development setups.
package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/Madofly35/GestLoc/internal/blob"
)

type Store struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func New(baseURL string) *Store {
	return &Store{baseURL: baseURL, objects: make(map[string][]byte)}
}

func key(bucket, path string) string { return bucket + "/" + path }

func (s *Store) Upload(_ context.Context, bucket, path string, data []byte, _ string) (blob.Object, error) {
	p, err := blob.CleanPath(path)
	if err != nil {
		return blob.Object{}, err
	}

	s.mu.Lock()
	s.objects[key(bucket, p)] = append([]byte(nil), data...)
	s.mu.Unlock()

	return blob.Object{Bucket: bucket, Path: p, URL: s.baseURL + key(bucket, p)}, nil
}

func (s *Store) SignedURL(_ context.Context, bucket, path string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.objects[key(bucket, path)]
	s.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("signing %s/%s: %w", bucket, path, blob.ErrNotFound)
	}

	q := url.Values{"expires": {time.Now().Add(ttl).UTC().Format(time.RFC3339)}}

	return s.baseURL + key(bucket, path) + "?" + q.Encode(), nil
}

func (s *Store) Delete(_ context.Context, bucket string, paths ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range paths {
		delete(s.objects, key(bucket, p))
	}

	return nil
}

func (s *Store) Download(_ context.Context, bucket, path string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.objects[key(bucket, path)]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("downloading %s/%s: %w", bucket, path, blob.ErrNotFound)
	}

	return append([]byte(nil), data...), nil
}

// Len reports how many objects are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
