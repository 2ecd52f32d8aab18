package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/property"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPropertyColumns = `p.id, p.name, p.address, p.postal_code, p.city, p.surface, p.created_at, p.updated_at`

func scanProperty(s scanner) (*property.Property, error) {
	var p property.Property

	if err := s.Scan(&p.ID, &p.Name, &p.Address, &p.PostalCode, &p.City, &p.Surface, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateProperty(ctx context.Context, p *property.Property) error {
	query := `
		INSERT INTO properties (name, address, postal_code, city, surface, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, p.Name, p.Address, p.PostalCode, p.City, p.Surface).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating property: %w", database.MapError(err, "property"))
	}

	return nil
}

func (s *Store) GetProperty(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties p WHERE p.id = $1`

	p, err := scanProperty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("property", id)
		}

		return nil, fmt.Errorf("getting property: %w", err)
	}

	return p, nil
}

func (s *Store) ListProperties(ctx context.Context) ([]*property.Property, error) {
	query := `SELECT ` + selectPropertyColumns + ` FROM properties p ORDER BY p.name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var out []*property.Property

	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating properties: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateProperty(ctx context.Context, p *property.Property) error {
	query := `
		UPDATE properties
		SET name = $1, address = $2, postal_code = $3, city = $4, surface = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, p.Name, p.Address, p.PostalCode, p.City, p.Surface, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("property", p.ID)
		}

		return fmt.Errorf("updating property: %w", database.MapError(err, "property"))
	}

	return nil
}

func (s *Store) DeleteProperty(ctx context.Context, id uuid.UUID) ([]string, error) {
	collect := `
		SELECT r.storage_path
		FROM receipts r
		JOIN payments pa ON pa.id = r.payment_id
		JOIN leases l ON l.id = pa.lease_id
		JOIN rooms ro ON ro.id = l.room_id
		WHERE ro.property_id = $1
	`

	return s.db.DeleteCollecting(ctx, "property", collect, `DELETE FROM properties WHERE id = $1`, id)
}

const selectRoomColumns = `
	ro.id, ro.property_id, ro.room_number, ro.surface, ro.has_tv, ro.has_shower, ro.created_at, ro.updated_at,
	` + selectPropertyColumns

func scanRoom(s scanner) (*property.Room, error) {
	var (
		r property.Room
		p property.Property
	)

	if err := s.Scan(
		&r.ID, &r.PropertyID, &r.Number, &r.Surface, &r.HasTV, &r.HasShower, &r.CreatedAt, &r.UpdatedAt,
		&p.ID, &p.Name, &p.Address, &p.PostalCode, &p.City, &p.Surface, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	r.Property = &p

	return &r, nil
}

func (s *Store) CreateRoom(ctx context.Context, r *property.Room) error {
	query := `
		INSERT INTO rooms (property_id, room_number, surface, has_tv, has_shower, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, r.PropertyID, r.Number, r.Surface, r.HasTV, r.HasShower).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating room: %w", database.MapError(err, "room"))
	}

	return nil
}

func (s *Store) GetRoom(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	query := `SELECT ` + selectRoomColumns + `
		FROM rooms ro
		JOIN properties p ON p.id = ro.property_id
		WHERE ro.id = $1`

	r, err := scanRoom(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("room", id)
		}

		return nil, fmt.Errorf("getting room: %w", err)
	}

	return r, nil
}

func (s *Store) ListRooms(ctx context.Context, filter property.RoomFilter) ([]*property.Room, error) {
	query := `SELECT ` + selectRoomColumns + `
		FROM rooms ro
		JOIN properties p ON p.id = ro.property_id`

	var args []any

	if filter.PropertyID != nil {
		query += " WHERE ro.property_id = $1"

		args = append(args, *filter.PropertyID)
	}

	query += " ORDER BY p.name ASC, ro.room_number ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	var out []*property.Room

	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}

	return out, nil
}

func (s *Store) UpdateRoom(ctx context.Context, r *property.Room) error {
	query := `
		UPDATE rooms
		SET room_number = $1, surface = $2, has_tv = $3, has_shower = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, r.Number, r.Surface, r.HasTV, r.HasShower, r.ID).Scan(&r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("room", r.ID)
		}

		return fmt.Errorf("updating room: %w", database.MapError(err, "room"))
	}

	return nil
}

func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) ([]string, error) {
	collect := `
		SELECT r.storage_path
		FROM receipts r
		JOIN payments pa ON pa.id = r.payment_id
		JOIN leases l ON l.id = pa.lease_id
		WHERE l.room_id = $1
	`

	return s.db.DeleteCollecting(ctx, "room", collect, `DELETE FROM rooms WHERE id = $1`, id)
}
