package document

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/blob"
)

// MaxSize bounds an uploaded document.
const MaxSize = 50 << 20

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=document
type Repository interface {
	Create(ctx context.Context, d *Document) error
	Get(ctx context.Context, id uuid.UUID) (*Document, error)
	ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Document, error)
	// Delete removes the row and returns it.
	Delete(ctx context.Context, id uuid.UUID) (*Document, error)
}

type Config struct {
	Buckets map[Type]string
	URLTTL  time.Duration
	Now     func() time.Time
}

type Service struct {
	repo  Repository
	store blob.Store
	cfg   Config
}

func NewService(repo Repository, store blob.Store, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{repo: repo, store: store, cfg: cfg}
}

type Upload struct {
	TenantID uuid.UUID
	Type     Type
	Name     string
	Data     []byte
}

func sanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, r == '/', r == '?', r == '#', r == '%':
			return -1
		}

		return r
	}, name)
	name = strings.ReplaceAll(name, "..", ".")

	if name == "." || name == "" {
		return "document"
	}

	return name
}

// Upload stores a tenant document. The MIME type is sniffed from the content.
func (s *Service) Upload(ctx context.Context, u Upload) (*Document, error) {
	errs := &apperr.ValidationError{}

	if !u.Type.Valid() {
		errs.Add("type", "must be one of contracts, documents, tickets")
	}

	if len(u.Data) == 0 {
		errs.Add("file", "is required")
	} else if len(u.Data) > MaxSize {
		errs.Add("file", fmt.Sprintf("must not exceed %d bytes", MaxSize))
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	name := sanitizeName(u.Name)
	mime := mimetype.Detect(u.Data)
	bucket := s.cfg.Buckets[u.Type]
	key := fmt.Sprintf("tenant_%s/%d_%s", u.TenantID, s.cfg.Now().UnixMilli(), name)

	obj, err := s.store.Upload(ctx, bucket, key, u.Data, mime.String())
	if err != nil {
		return nil, apperr.Storage("uploading document", err)
	}

	d := &Document{
		TenantID:    u.TenantID,
		Type:        u.Type,
		Name:        name,
		StoragePath: obj.Path,
		MimeType:    mime.String(),
		Size:        int64(len(u.Data)),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		if derr := s.store.Delete(ctx, bucket, obj.Path); derr != nil {
			slog.Error("removing orphaned document failed", "path", obj.Path, "error", derr)
		}

		return nil, err
	}

	d.URL = obj.URL
	s.sign(ctx, d)

	return d, nil
}

func (s *Service) sign(ctx context.Context, d *Document) {
	url, err := s.store.SignedURL(ctx, s.cfg.Buckets[d.Type], d.StoragePath, s.cfg.URLTTL)
	if err != nil {
		slog.Warn("signing document url failed", "document_id", d.ID, "error", err)
		return
	}

	d.URL = url
}

// Get returns a document with a freshly signed URL.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.sign(ctx, d)

	return d, nil
}

func (s *Service) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Document, error) {
	return s.repo.ListForTenant(ctx, tenantID)
}

// Delete removes the record first, then its stored object on a best-effort basis.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, s.cfg.Buckets[d.Type], d.StoragePath); err != nil {
		slog.Error("deleting document object failed", "document_id", id, "path", d.StoragePath, "error", err)
	}

	return nil
}
