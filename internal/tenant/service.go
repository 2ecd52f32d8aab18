package tenant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=tenant
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	Get(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetByEmail(ctx context.Context, email string) (*Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]*Tenant, error)
	Update(ctx context.Context, t *Tenant) error
	// Delete removes the tenant with its leases, payments and documents and
	// returns the storage paths of the receipts removed along the way.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type Purger interface {
	Purge(ctx context.Context, paths []string)
}

type Service struct {
	repo   Repository
	purger Purger
}

func NewService(repo Repository, purger Purger) *Service {
	return &Service{repo: repo, purger: purger}
}

type Params struct {
	FirstName   string    `validate:"required,min=2,max=50"`
	LastName    string    `validate:"required,min=2,max=50"`
	DateOfBirth time.Time `validate:"required,notfuture"`
	Email       string    `validate:"required,email,max=255"`
	Phone       string    `validate:"required,phone"`
}

type ListFilter struct {
	Search string
}

func (p *Params) normalize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.DateOfBirth = p.DateOfBirth.UTC().Truncate(24 * time.Hour)
}

func (p Params) apply(t *Tenant) {
	t.FirstName = p.FirstName
	t.LastName = p.LastName
	t.DateOfBirth = p.DateOfBirth
	t.Email = p.Email
	t.Phone = p.Phone
}

func (s *Service) Create(ctx context.Context, params Params) (*Tenant, error) {
	params.normalize()

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	t := &Tenant{}
	params.apply(t)

	// A duplicate email surfaces from the store as apperr.ErrConflict.
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.Get(ctx, id)
}

// FindByEmail looks a tenant up by email, compared case-insensitively.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Tenant, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Tenant, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*Tenant, error) {
	params.normalize()

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params.apply(t)

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, paths)

	return nil
}
