package blob

import (
	"context"
	"errors"
	"time"

	"github.com/Madofly35/GestLoc/internal/metrics"
)

type instrumented struct {
	next   Store
	driver string
}

// Instrument wraps s so each call is counted and timed under the driver label.
func Instrument(s Store, driver string) Store {
	return &instrumented{next: s, driver: driver}
}

func (i *instrumented) observe(op string, start time.Time, err error) {
	result := "ok"

	switch {
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}

	metrics.BlobOperationsTotal.WithLabelValues(i.driver, op, result).Inc()
	metrics.BlobOperationDuration.WithLabelValues(i.driver, op).Observe(time.Since(start).Seconds())
}

func (i *instrumented) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (Object, error) {
	start := time.Now()
	obj, err := i.next.Upload(ctx, bucket, path, data, contentType)
	i.observe("upload", start, err)

	return obj, err
}

func (i *instrumented) SignedURL(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	start := time.Now()
	url, err := i.next.SignedURL(ctx, bucket, path, ttl)
	i.observe("sign", start, err)

	return url, err
}

func (i *instrumented) Delete(ctx context.Context, bucket string, paths ...string) error {
	start := time.Now()
	err := i.next.Delete(ctx, bucket, paths...)
	i.observe("delete", start, err)

	return err
}

func (i *instrumented) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	start := time.Now()
	data, err := i.next.Download(ctx, bucket, path)
	i.observe("download", start, err)

	return data, err
}
