package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/lease"
)

type Store struct {
	db *database.DB
}

func New(db *database.DB) *Store {
	return &Store{db: db}
}

const selectLeaseColumns = `l.id, l.tenant_id, l.room_id, l.start_date, l.end_date, l.rent_value, l.charges, l.created_at, l.updated_at`

func scanLease(s Scanner) (*lease.Lease, error) {
	var l lease.Lease

	if err := s.Scan(
		&l.ID, &l.TenantID, &l.RoomID, &l.StartDate, &l.EndDate, &l.RentValue, &l.Charges, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &l, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func collect(ctx context.Context, q queryer, scan func(Scanner) (*lease.Lease, error), query string, args ...any) ([]*lease.Lease, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leases: %w", err)
	}
	defer rows.Close()

	var out []*lease.Lease

	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning lease: %w", err)
		}

		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leases: %w", err)
	}

	return out, nil
}

func scanChain(s Scanner) (*lease.Lease, error) {
	return ScanChain(s)
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*lease.Lease, error) {
	query := `SELECT ` + Columns + ` FROM leases l` + ChainJoin + ` WHERE l.id = $1`

	l, err := ScanChain(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("lease", id)
		}

		return nil, fmt.Errorf("getting lease: %w", err)
	}

	return l, nil
}

func (s *Store) List(ctx context.Context, filter lease.ListFilter) ([]*lease.Lease, error) {
	var (
		where []string
		args  []any
	)

	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		where = append(where, fmt.Sprintf("l.room_id = $%d", len(args)))
	}

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		where = append(where, fmt.Sprintf("l.tenant_id = $%d", len(args)))
	}

	if filter.ActiveOn != nil {
		args = append(args, *filter.ActiveOn)
		n := len(args)
		where = append(where, fmt.Sprintf("l.start_date <= $%d AND (l.end_date IS NULL OR l.end_date > $%d)", n, n))
	}

	query := `SELECT ` + Columns + ` FROM leases l` + ChainJoin
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY l.start_date DESC"

	return collect(ctx, s.db, scanChain, query, args...)
}

func (s *Store) ListForRoom(ctx context.Context, roomID uuid.UUID) ([]*lease.Lease, error) {
	query := `SELECT ` + selectLeaseColumns + ` FROM leases l WHERE l.room_id = $1 ORDER BY l.start_date`

	return collect(ctx, s.db, scanLease, query, roomID)
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) ([]string, error) {
	paths := `
		SELECT r.storage_path
		FROM receipts r
		JOIN payments pa ON pa.id = r.payment_id
		WHERE pa.lease_id = $1
	`

	return s.db.DeleteCollecting(ctx, "lease", paths, `DELETE FROM leases WHERE id = $1`, id)
}

func (s *Store) Begin(ctx context.Context) (lease.Tx, error) {
	tx, err := s.db.Begin(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &leaseTx{Tx: tx}, nil
}

type leaseTx struct {
	*database.Tx
}

func (tx *leaseTx) LockRoom(ctx context.Context, roomID uuid.UUID) error {
	var id uuid.UUID

	err := tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = $1 FOR UPDATE`, roomID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("room", roomID)
		}

		return fmt.Errorf("locking room: %w", database.MapError(err, "room"))
	}

	return nil
}

func (tx *leaseTx) TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var ok bool

	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, tenantID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("checking tenant: %w", err)
	}

	return ok, nil
}

func (tx *leaseTx) RoomLeases(ctx context.Context, roomID uuid.UUID) ([]*lease.Lease, error) {
	query := `SELECT ` + selectLeaseColumns + ` FROM leases l WHERE l.room_id = $1`

	return collect(ctx, tx, scanLease, query, roomID)
}

func (tx *leaseTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*lease.Lease, error) {
	query := `SELECT ` + selectLeaseColumns + ` FROM leases l WHERE l.id = $1 FOR UPDATE OF l`

	l, err := scanLease(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("lease", id)
		}

		return nil, fmt.Errorf("locking lease: %w", err)
	}

	return l, nil
}

func (tx *leaseTx) Create(ctx context.Context, l *lease.Lease) error {
	query := `
		INSERT INTO leases (tenant_id, room_id, start_date, end_date, rent_value, charges, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRowContext(ctx, query, l.TenantID, l.RoomID, l.StartDate, l.EndDate, l.RentValue, l.Charges).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating lease: %w", database.MapError(err, "lease"))
	}

	return nil
}

func (tx *leaseTx) Update(ctx context.Context, l *lease.Lease) error {
	query := `
		UPDATE leases
		SET tenant_id = $1, room_id = $2, start_date = $3, end_date = $4, rent_value = $5, charges = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := tx.QueryRowContext(ctx, query, l.TenantID, l.RoomID, l.StartDate, l.EndDate, l.RentValue, l.Charges, l.ID).
		Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("lease", l.ID)
		}

		return fmt.Errorf("updating lease: %w", database.MapError(err, "lease"))
	}

	return nil
}

func (tx *leaseTx) DueDates(ctx context.Context, leaseID uuid.UUID) ([]time.Time, error) {
	rows, err := tx.QueryContext(ctx, `SELECT due_date FROM payments WHERE lease_id = $1 ORDER BY due_date`, leaseID)
	if err != nil {
		return nil, fmt.Errorf("listing due dates: %w", err)
	}
	defer rows.Close()

	var out []time.Time

	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning due date: %w", err)
		}

		out = append(out, d)
	}

	return out, rows.Err()
}

// CreatePayments inserts one pending payment per stub in a single statement.
// Months that already have a payment are skipped by the unique (lease_id, due_date) key.
func (tx *leaseTx) CreatePayments(ctx context.Context, leaseID uuid.UUID, stubs []lease.Stub) error {
	if len(stubs) == 0 {
		return nil
	}

	var (
		values []string
		args   = []any{leaseID}
	)

	for _, s := range stubs {
		n := len(args)
		values = append(values, fmt.Sprintf("($1, $%d, $%d, $%d, $%d, 'pending', NOW(), NOW())", n+1, n+2, n+3, n+4))
		args = append(args, s.DueDate, s.Rent, s.Charges, s.Amount())
	}

	query := `
		INSERT INTO payments (lease_id, due_date, rent_amount, charges, amount, status, created_at, updated_at)
		VALUES ` + strings.Join(values, ", ") + `
		ON CONFLICT (lease_id, due_date) DO NOTHING`

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("creating payments: %w", database.MapError(err, "payment"))
	}

	return nil
}

// DeletePendingBefore drops the unpaid months due before start. Paid months are history and stay.
func (tx *leaseTx) DeletePendingBefore(ctx context.Context, leaseID uuid.UUID, start time.Time) (int, error) {
	return tx.deletePending(ctx, `due_date < $2`, leaseID, start)
}

// DeletePendingAfter drops the unpaid months due after end. Paid months are history and stay.
func (tx *leaseTx) DeletePendingAfter(ctx context.Context, leaseID uuid.UUID, end time.Time) (int, error) {
	return tx.deletePending(ctx, `due_date > $2`, leaseID, end)
}

func (tx *leaseTx) deletePending(ctx context.Context, cond string, leaseID uuid.UUID, bound time.Time) (int, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM payments WHERE lease_id = $1 AND status = 'pending' AND `+cond, leaseID, bound)
	if err != nil {
		return 0, fmt.Errorf("deleting pending payments: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted payments: %w", err)
	}

	return int(n), nil
}
