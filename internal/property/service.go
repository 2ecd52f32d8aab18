package property

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=property
type Repository interface {
	CreateProperty(ctx context.Context, p *Property) error
	GetProperty(ctx context.Context, id uuid.UUID) (*Property, error)
	ListProperties(ctx context.Context) ([]*Property, error)
	UpdateProperty(ctx context.Context, p *Property) error
	// DeleteProperty removes the property with everything below it and returns
	// the storage paths of the receipts that went with it.
	DeleteProperty(ctx context.Context, id uuid.UUID) ([]string, error)

	CreateRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	ListRooms(ctx context.Context, filter RoomFilter) ([]*Room, error)
	UpdateRoom(ctx context.Context, r *Room) error
	DeleteRoom(ctx context.Context, id uuid.UUID) ([]string, error)
}

// Purger removes stored receipt artifacts left behind by cascading deletes.
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
	Name       string  `validate:"required,max=255"`
	Address    string  `validate:"required,max=255"`
	PostalCode string  `validate:"required,max=10"`
	City       string  `validate:"required,max=255"`
	Surface    float64 `validate:"gte=0"`
}

type RoomParams struct {
	PropertyID uuid.UUID `validate:"required"`
	Number     string    `validate:"required,max=20"`
	Surface    float64   `validate:"gte=0"`
	HasTV      bool
	HasShower  bool
}

type RoomFilter struct {
	PropertyID *uuid.UUID
}

func (s *Service) Create(ctx context.Context, params Params) (*Property, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	p := &Property{}
	params.apply(p)

	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (params Params) apply(p *Property) {
	p.Name = params.Name
	p.Address = params.Address
	p.PostalCode = params.PostalCode
	p.City = params.City
	p.Surface = params.Surface
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Property, error) {
	return s.repo.GetProperty(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Property, error) {
	return s.repo.ListProperties(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*Property, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	p, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}

	params.apply(p)

	if err := s.repo.UpdateProperty(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.DeleteProperty(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, paths)

	return nil
}

func (s *Service) CreateRoom(ctx context.Context, params RoomParams) (*Room, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetProperty(ctx, params.PropertyID); err != nil {
		return nil, fmt.Errorf("loading property: %w", err)
	}

	r := &Room{PropertyID: params.PropertyID}
	params.apply(r)

	if err := s.repo.CreateRoom(ctx, r); err != nil {
		return nil, err
	}

	return s.repo.GetRoom(ctx, r.ID)
}

func (params RoomParams) apply(r *Room) {
	r.Number = params.Number
	r.Surface = params.Surface
	r.HasTV = params.HasTV
	r.HasShower = params.HasShower
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.repo.GetRoom(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context, filter RoomFilter) ([]*Room, error) {
	return s.repo.ListRooms(ctx, filter)
}

// UpdateRoom rewrites the descriptive fields of a room. Rooms never move between properties.
func (s *Service) UpdateRoom(ctx context.Context, id uuid.UUID, params RoomParams) (*Room, error) {
	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	r, err := s.repo.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.PropertyID != params.PropertyID {
		return nil, apperr.Invalid("property_id", "cannot be changed")
	}

	params.apply(r)

	if err := s.repo.UpdateRoom(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.DeleteRoom(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, paths)

	return nil
}
