package lease

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/txn"
	"github.com/Madofly35/GestLoc/internal/validate"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=lease
type Repository interface {
	// Get loads a lease with its tenant, room and property.
	Get(ctx context.Context, id uuid.UUID) (*Lease, error)
	List(ctx context.Context, filter ListFilter) ([]*Lease, error)
	ListForRoom(ctx context.Context, roomID uuid.UUID) ([]*Lease, error)
	// Delete removes the lease with its payments and returns the storage paths of its receipts.
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is a unit of work over leases. LockRoom serializes writers of the same room
// so the overlap check and the insert it guards see the same lease set.
type Tx interface {
	LockRoom(ctx context.Context, roomID uuid.UUID) error
	TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error)
	RoomLeases(ctx context.Context, roomID uuid.UUID) ([]*Lease, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Lease, error)
	Create(ctx context.Context, l *Lease) error
	Update(ctx context.Context, l *Lease) error
	DueDates(ctx context.Context, leaseID uuid.UUID) ([]time.Time, error)
	CreatePayments(ctx context.Context, leaseID uuid.UUID, stubs []Stub) error
	DeletePendingBefore(ctx context.Context, leaseID uuid.UUID, start time.Time) (int, error)
	DeletePendingAfter(ctx context.Context, leaseID uuid.UUID, end time.Time) (int, error)
	Commit() error
	Rollback() error
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
	TenantID  uuid.UUID `validate:"required"`
	RoomID    uuid.UUID `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   *time.Time
	RentValue money.Cents `validate:"gte=0"`
	Charges   money.Cents `validate:"gte=0"`
}

type ListFilter struct {
	RoomID   *uuid.UUID
	TenantID *uuid.UUID
	ActiveOn *time.Time
}

func (p *Params) normalize() {
	p.StartDate = Day(p.StartDate)

	if p.EndDate != nil {
		p.EndDate = new(Day(*p.EndDate))
	}
}

func (p Params) check() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	return checkDates(p.StartDate, p.EndDate)
}

func checkDates(start time.Time, end *time.Time) error {
	if end != nil && !end.After(start) {
		return apperr.Invalid("end_date", "must be after start_date")
	}

	return nil
}

func (p Params) apply(l *Lease) {
	l.TenantID = p.TenantID
	l.RoomID = p.RoomID
	l.StartDate = p.StartDate
	l.EndDate = p.EndDate
	l.RentValue = p.RentValue
	l.Charges = p.Charges
}

// Create signs a new lease and emits its payment schedule. The room is locked
// for the whole check-then-insert sequence.
func (s *Service) Create(ctx context.Context, params Params) (*Lease, error) {
	params.normalize()

	if err := params.check(); err != nil {
		return nil, err
	}

	l := &Lease{}
	params.apply(l)

	err := txn.Run(ctx, s.repo.Begin, func(tx Tx) error {
		if err := tx.LockRoom(ctx, l.RoomID); err != nil {
			return fmt.Errorf("locking room: %w", err)
		}

		if err := requireTenant(ctx, tx, l.TenantID); err != nil {
			return err
		}

		existing, err := tx.RoomLeases(ctx, l.RoomID)
		if err != nil {
			return fmt.Errorf("loading room leases: %w", err)
		}

		if err := CheckOverlap(existing, l.Interval(), uuid.Nil); err != nil {
			return err
		}

		if err := tx.Create(ctx, l); err != nil {
			return fmt.Errorf("inserting lease: %w", err)
		}

		if err := tx.CreatePayments(ctx, l.ID, GenerateSchedule(l)); err != nil {
			return fmt.Errorf("creating payment schedule: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating lease: %w", err)
	}

	return s.repo.Get(ctx, l.ID)
}

func requireTenant(ctx context.Context, tx Tx, id uuid.UUID) error {
	ok, err := tx.TenantExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking tenant: %w", err)
	}

	if !ok {
		return apperr.NotFound("tenant", id)
	}

	return nil
}

// Update replaces every field of a lease. Payments already generated keep their
// amounts; missing months are appended and pending months outside the new dates are dropped.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params Params) (*Lease, error) {
	params.normalize()

	if err := params.check(); err != nil {
		return nil, err
	}

	return s.save(ctx, id, func(l *Lease) error {
		params.apply(l)
		return nil
	})
}

// Terminate sets the end date of a lease.
func (s *Service) Terminate(ctx context.Context, id uuid.UUID, end time.Time) (*Lease, error) {
	end = Day(end)

	return s.save(ctx, id, func(l *Lease) error {
		if err := checkDates(l.StartDate, &end); err != nil {
			return err
		}

		l.EndDate = &end

		return nil
	})
}

func (s *Service) save(ctx context.Context, id uuid.UUID, mutate func(l *Lease) error) (*Lease, error) {
	err := txn.Run(ctx, s.repo.Begin, func(tx Tx) error {
		l, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		previousRoom, previousTenant := l.RoomID, l.TenantID

		if err := mutate(l); err != nil {
			return err
		}

		for _, roomID := range lockOrder(previousRoom, l.RoomID) {
			if err := tx.LockRoom(ctx, roomID); err != nil {
				return fmt.Errorf("locking room: %w", err)
			}
		}

		if l.TenantID != previousTenant {
			if err := requireTenant(ctx, tx, l.TenantID); err != nil {
				return err
			}
		}

		existing, err := tx.RoomLeases(ctx, l.RoomID)
		if err != nil {
			return fmt.Errorf("loading room leases: %w", err)
		}

		if err := CheckOverlap(existing, l.Interval(), l.ID); err != nil {
			return err
		}

		if err := tx.Update(ctx, l); err != nil {
			return fmt.Errorf("updating lease: %w", err)
		}

		if _, err := tx.DeletePendingBefore(ctx, l.ID, l.StartDate); err != nil {
			return fmt.Errorf("dropping payments before start date: %w", err)
		}

		if l.EndDate != nil {
			if _, err := tx.DeletePendingAfter(ctx, l.ID, *l.EndDate); err != nil {
				return fmt.Errorf("dropping payments past end date: %w", err)
			}
		}

		_, err = extend(ctx, tx, l)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving lease %s: %w", id, err)
	}

	return s.repo.Get(ctx, id)
}

// lockOrder returns the distinct rooms in a stable order so concurrent writers
// touching the same pair of rooms acquire the locks identically.
func lockOrder(a, b uuid.UUID) []uuid.UUID {
	switch cmp := bytes.Compare(a[:], b[:]); {
	case cmp == 0:
		return []uuid.UUID{a}
	case cmp < 0:
		return []uuid.UUID{a, b}
	default:
		return []uuid.UUID{b, a}
	}
}

func extend(ctx context.Context, tx Tx, l *Lease) ([]Stub, error) {
	dates, err := tx.DueDates(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("loading due dates: %w", err)
	}

	missing := Missing(GenerateSchedule(l), dates)
	if len(missing) == 0 {
		return nil, nil
	}

	if err := tx.CreatePayments(ctx, l.ID, missing); err != nil {
		return nil, fmt.Errorf("appending payments: %w", err)
	}

	return missing, nil
}

// Schedule re-runs schedule generation for a lease and returns the stubs it added.
// Running it again right away adds nothing.
func (s *Service) Schedule(ctx context.Context, id uuid.UUID) ([]Stub, error) {
	var added []Stub

	err := txn.Run(ctx, s.repo.Begin, func(tx Tx) error {
		l, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		added, err = extend(ctx, tx, l)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling lease %s: %w", id, err)
	}

	return added, nil
}

// HasOverlap reports whether [start, end) collides with a lease of the room other than exclude.
func (s *Service) HasOverlap(ctx context.Context, roomID uuid.UUID, start time.Time, end *time.Time, exclude uuid.UUID) (bool, error) {
	existing, err := s.repo.ListForRoom(ctx, roomID)
	if err != nil {
		return false, err
	}

	return FindOverlap(existing, Interval{Start: start, End: end}, exclude) != nil, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Lease, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Lease, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	paths, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, paths)

	return nil
}
