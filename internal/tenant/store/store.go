package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/tenant"
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

const selectTenantColumns = `t.id, t.first_name, t.last_name, t.date_of_birth, t.email, t.phone, t.created_at, t.updated_at`

func scanTenant(s scanner) (*tenant.Tenant, error) {
	var t tenant.Tenant

	if err := s.Scan(&t.ID, &t.FirstName, &t.LastName, &t.DateOfBirth, &t.Email, &t.Phone, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	return &t, nil
}

func (s *Store) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
		INSERT INTO tenants (first_name, last_name, date_of_birth, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query, t.FirstName, t.LastName, t.DateOfBirth, t.Email, t.Phone).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating tenant: %w", database.MapError(err, "tenant"))
	}

	return nil
}

func (s *Store) get(ctx context.Context, where string, arg any) (*tenant.Tenant, error) {
	query := `SELECT ` + selectTenantColumns + ` FROM tenants t WHERE ` + where

	t, err := scanTenant(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("tenant", arg)
		}

		return nil, fmt.Errorf("getting tenant: %w", err)
	}

	return t, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.get(ctx, "t.id = $1", id)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*tenant.Tenant, error) {
	return s.get(ctx, "t.email = $1", email)
}

func (s *Store) List(ctx context.Context, filter tenant.ListFilter) ([]*tenant.Tenant, error) {
	query := `SELECT ` + selectTenantColumns + ` FROM tenants t`

	var args []any

	if filter.Search != "" {
		query += ` WHERE t.first_name ILIKE $1 OR t.last_name ILIKE $1 OR t.email ILIKE $1`

		args = append(args, "%"+filter.Search+"%")
	}

	query += " ORDER BY t.last_name ASC, t.first_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer rows.Close()

	var out []*tenant.Tenant

	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}

		out = append(out, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}

	return out, nil
}

func (s *Store) Update(ctx context.Context, t *tenant.Tenant) error {
	query := `
		UPDATE tenants
		SET first_name = $1, last_name = $2, date_of_birth = $3, email = $4, phone = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, t.FirstName, t.LastName, t.DateOfBirth, t.Email, t.Phone, t.ID).
		Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("tenant", t.ID)
		}

		return fmt.Errorf("updating tenant: %w", database.MapError(err, "tenant"))
	}

	return nil
}

// TODO: collect documents.storage_path too so uploaded tenant files are purged with the tenant.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	collect := `
		SELECT r.storage_path
		FROM receipts r
		JOIN payments pa ON pa.id = r.payment_id
		JOIN leases l ON l.id = pa.lease_id
		WHERE l.tenant_id = $1
	`

	return s.db.DeleteCollecting(ctx, "tenant", collect, `DELETE FROM tenants WHERE id = $1`, id)
}
