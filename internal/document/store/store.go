package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/document"
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

const selectDocumentColumns = `id, tenant_id, type, name, storage_path, mime_type, size, created_at`

func scanDocument(s scanner) (*document.Document, error) {
	var d document.Document

	if err := s.Scan(&d.ID, &d.TenantID, &d.Type, &d.Name, &d.StoragePath, &d.MimeType, &d.Size, &d.CreatedAt); err != nil {
		return nil, err
	}

	return &d, nil
}

func (s *Store) Create(ctx context.Context, d *document.Document) error {
	query := `
		INSERT INTO documents (tenant_id, type, name, storage_path, mime_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, d.TenantID, d.Type, d.Name, d.StoragePath, d.MimeType, d.Size).
		Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating document: %w", database.MapError(err, "tenant"))
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents WHERE id = $1`

	d, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document", id)
		}

		return nil, fmt.Errorf("getting document: %w", err)
	}

	return d, nil
}

func (s *Store) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*document.Document, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM documents WHERE tenant_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []*document.Document

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return out, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `DELETE FROM documents WHERE id = $1 RETURNING ` + selectDocumentColumns

	d, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("document", id)
		}

		return nil, fmt.Errorf("deleting document: %w", err)
	}

	return d, nil
}
