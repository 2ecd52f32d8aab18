package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/payment"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

// Save upserts on the unique payment_id. A revoked receipt is revived in place
// and forgets its previous download. The payment row is share-locked and must
// still be paid on paidOn, so a concurrent return to pending wins.
func (s *Store) Save(ctx context.Context, r *payment.Receipt, paidOn time.Time) error {
	query := `
		WITH paid AS (
			SELECT id FROM payments
			WHERE id = $1 AND status = 'paid' AND payment_date = $7
			FOR SHARE
		)
		INSERT INTO receipts (payment_id, storage_path, storage_url, verification_hash, signed, generated_at)
		SELECT id, $2, $3, $4, $5, $6 FROM paid
		ON CONFLICT (payment_id) DO UPDATE SET
			storage_path = EXCLUDED.storage_path,
			storage_url = EXCLUDED.storage_url,
			verification_hash = EXCLUDED.verification_hash,
			signed = EXCLUDED.signed,
			generated_at = EXCLUDED.generated_at,
			downloaded_at = CASE WHEN receipts.revoked_at IS NULL THEN receipts.downloaded_at END,
			revoked_at = NULL
		RETURNING id, downloaded_at
	`

	err := s.db.QueryRowContext(ctx, query,
		r.PaymentID, r.StoragePath, r.StorageURL, r.VerificationHash, r.Signed, r.GeneratedAt, paidOn,
	).Scan(&r.ID, &r.DownloadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Conflict("payment %s is no longer paid on %s", r.PaymentID, paidOn.Format(time.DateOnly))
	}

	if err != nil {
		return fmt.Errorf("saving receipt: %w", database.MapError(err, "receipt"))
	}

	r.RevokedAt = nil

	return nil
}

func (s *Store) TouchDownloaded(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE receipts SET downloaded_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("updating receipt: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("receipt", id)
	}

	return nil
}

func (s *Store) DeleteRevoked(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `DELETE FROM receipts WHERE revoked_at IS NOT NULL RETURNING storage_path`)
	if err != nil {
		return nil, fmt.Errorf("deleting revoked receipts: %w", err)
	}
	defer rows.Close()

	var paths []string

	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning receipt path: %w", err)
		}

		paths = append(paths, p)
	}

	return paths, rows.Err()
}
