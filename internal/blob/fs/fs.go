// Package fs stores blobs on the local filesystem and hands out JWT-signed download URLs.
package fs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
)

var ErrInvalidToken = errors.New("invalid download token")

type Store struct {
	root    string
	baseURL string
	key     []byte
}

// New stores objects under root. Signed URLs point at baseURL + "/storage/{bucket}/{path}".
func New(root, baseURL string, signingKey []byte) *Store {
	return &Store{root: root, baseURL: baseURL, key: signingKey}
}

func (s *Store) file(bucket, p string) (string, string, error) {
	clean, err := blob.CleanPath(p)
	if err != nil {
		return "", "", err
	}

	b, err := blob.CleanPath(bucket)
	if err != nil {
		return "", "", err
	}

	return filepath.Join(s.root, b, filepath.FromSlash(clean)), clean, nil
}

func (s *Store) Upload(_ context.Context, bucket, p string, data []byte, _ string) (blob.Object, error) {
	name, clean, err := s.file(bucket, p)
	if err != nil {
		return blob.Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return blob.Object{}, apperr.Storage("creating blob directory", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(name), ".upload-*")
	if err != nil {
		return blob.Object{}, apperr.Storage("creating temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return blob.Object{}, apperr.Storage("writing blob", err)
	}

	if err := tmp.Close(); err != nil {
		return blob.Object{}, apperr.Storage("closing blob", err)
	}

	if err := os.Rename(tmp.Name(), name); err != nil {
		return blob.Object{}, apperr.Storage("moving blob into place", err)
	}

	return blob.Object{Bucket: bucket, Path: clean, URL: s.location(bucket, clean)}, nil
}

func (s *Store) location(bucket, p string) string {
	return s.baseURL + "/storage/" + bucket + "/" + p
}

type claims struct {
	jwt.RegisteredClaims
}

func (s *Store) SignedURL(_ context.Context, bucket, p string, ttl time.Duration) (string, error) {
	name, clean, err := s.file(bucket, p)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("signing %s/%s: %w", bucket, clean, blob.ErrNotFound)
		}

		return "", apperr.Storage("checking blob", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   bucket + "/" + clean,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("signing download token: %w", err)
	}

	return s.location(bucket, clean) + "?" + url.Values{"token": {signed}}.Encode(), nil
}

// Verify checks that token grants access to bucket/path.
func (s *Store) Verify(bucket, p, token string) error {
	clean, err := blob.CleanPath(p)
	if err != nil {
		return err
	}

	var c claims

	_, err = jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if c.Subject != bucket+"/"+clean {
		return fmt.Errorf("%w: token issued for another object", ErrInvalidToken)
	}

	return nil
}

func (s *Store) Delete(_ context.Context, bucket string, paths ...string) error {
	var errs []error

	for _, p := range paths {
		name, _, err := s.file(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return apperr.Storage("deleting blobs", err)
	}

	return nil
}

func (s *Store) Download(_ context.Context, bucket, p string) ([]byte, error) {
	name, clean, err := s.file(bucket, p)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("downloading %s/%s: %w", bucket, clean, blob.ErrNotFound)
		}

		return nil, apperr.Storage("reading blob", err)
	}

	return data, nil
}
