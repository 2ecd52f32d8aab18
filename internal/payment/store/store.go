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
	leasestore "github.com/Madofly35/GestLoc/internal/lease/store"
	"github.com/Madofly35/GestLoc/internal/payment"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

const selectPaymentColumns = `pa.id, pa.lease_id, pa.due_date, pa.rent_amount, pa.charges, pa.amount, pa.status, pa.payment_date, pa.created_at, pa.updated_at`

// ReceiptColumns selects the receipt of a payment through a LEFT JOIN aliased r.
const ReceiptColumns = `r.id, r.storage_path, r.storage_url, r.verification_hash, r.signed, r.generated_at, r.downloaded_at, r.revoked_at`

const selectChain = `SELECT ` + selectPaymentColumns + `, ` + ReceiptColumns + `, ` + leasestore.Columns + `
	FROM payments pa
	JOIN leases l ON l.id = pa.lease_id` + leasestore.ChainJoin + `
	LEFT JOIN receipts r ON r.payment_id = pa.id`

func paymentDest(p *payment.Payment) []any {
	return []any{
		&p.ID, &p.LeaseID, &p.DueDate, &p.Rent, &p.Charges, &p.Amount, &p.Status, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt,
	}
}

// NullReceipt receives the columns of ReceiptColumns when the join may miss.
type NullReceipt struct {
	ID           uuid.NullUUID
	StoragePath  sql.NullString
	StorageURL   sql.NullString
	Hash         sql.NullString
	Signed       sql.NullBool
	GeneratedAt  sql.NullTime
	DownloadedAt *time.Time
	RevokedAt    *time.Time
}

func (n *NullReceipt) Dest() []any {
	return []any{&n.ID, &n.StoragePath, &n.StorageURL, &n.Hash, &n.Signed, &n.GeneratedAt, &n.DownloadedAt, &n.RevokedAt}
}

// Receipt returns nil when no receipt row was joined.
func (n *NullReceipt) Receipt(paymentID uuid.UUID) *payment.Receipt {
	if !n.ID.Valid {
		return nil
	}

	return &payment.Receipt{
		ID:               n.ID.UUID,
		PaymentID:        paymentID,
		StoragePath:      n.StoragePath.String,
		StorageURL:       n.StorageURL.String,
		VerificationHash: n.Hash.String,
		Signed:           n.Signed.Bool,
		GeneratedAt:      n.GeneratedAt.Time,
		DownloadedAt:     n.DownloadedAt,
		RevokedAt:        n.RevokedAt,
	}
}

func scanChain(s leasestore.Scanner) (*payment.Payment, error) {
	var (
		p payment.Payment
		r NullReceipt
	)

	l, err := leasestore.ScanChain(s, append(paymentDest(&p), r.Dest()...)...)
	if err != nil {
		return nil, err
	}

	p.Lease = l
	p.Receipt = r.Receipt(p.ID)

	return &p, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	p, err := scanChain(s.db.QueryRowContext(ctx, selectChain+` WHERE pa.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment", id)
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]*payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, selectChain+` WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var out []*payment.Payment

	for rows.Next() {
		p, err := scanChain(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payments: %w", err)
	}

	return out, nil
}

func (s *Store) ListForLease(ctx context.Context, leaseID uuid.UUID) ([]*payment.Payment, error) {
	return s.list(ctx, `pa.lease_id = $1 ORDER BY pa.due_date ASC`, leaseID)
}

func (s *Store) ListPeriod(ctx context.Context, from, to time.Time) ([]*payment.Payment, error) {
	return s.list(ctx, `pa.due_date >= $1 AND pa.due_date < $2 ORDER BY pa.due_date ASC, t.last_name ASC`, from, to)
}

func (s *Store) ListPaidForTenant(ctx context.Context, tenantID uuid.UUID) ([]*payment.Payment, error) {
	return s.list(ctx, `l.tenant_id = $1 AND pa.status = 'paid' ORDER BY pa.due_date DESC`, tenantID)
}

func (s *Store) ListPaidWithoutReceipt(ctx context.Context) ([]*payment.Payment, error) {
	return s.list(ctx, `pa.status = 'paid' AND (r.id IS NULL OR r.revoked_at IS NOT NULL) ORDER BY pa.due_date ASC`)
}

func (s *Store) Begin(ctx context.Context) (payment.Tx, error) {
	tx, err := s.db.Begin(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &paymentTx{Tx: tx}, nil
}

type paymentTx struct {
	*database.Tx
}

func (tx *paymentTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment

	query := `SELECT ` + selectPaymentColumns + ` FROM payments pa WHERE pa.id = $1 FOR UPDATE`

	if err := tx.QueryRowContext(ctx, query, id).Scan(paymentDest(&p)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("payment", id)
		}

		return nil, fmt.Errorf("locking payment: %w", err)
	}

	return &p, nil
}

func (tx *paymentTx) SetStatus(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, payment_date = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	if err := tx.QueryRowContext(ctx, query, p.Status, p.PaymentDate, p.ID).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("payment", p.ID)
		}

		return fmt.Errorf("updating payment status: %w", database.MapError(err, "payment"))
	}

	return nil
}

func (tx *paymentTx) RevokeReceipt(ctx context.Context, paymentID uuid.UUID, at time.Time) (string, error) {
	query := `
		UPDATE receipts
		SET revoked_at = $2
		WHERE payment_id = $1 AND revoked_at IS NULL
		RETURNING storage_path
	`

	var path string

	if err := tx.QueryRowContext(ctx, query, paymentID, at).Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("revoking receipt: %w", err)
	}

	return path, nil
}

// FindByHash loads the payment whose active receipt carries hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (*payment.Payment, error) {
	query := selectChain + ` WHERE r.verification_hash = $1 AND r.revoked_at IS NULL`

	p, err := scanChain(s.db.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("receipt: %w", apperr.ErrNotFound)
		}

		return nil, fmt.Errorf("finding receipt: %w", err)
	}

	return p, nil
}
