package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/metrics"
	"github.com/Madofly35/GestLoc/internal/txn"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	// Get loads a payment with its lease chain and receipt.
	Get(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListForLease(ctx context.Context, leaseID uuid.UUID) ([]*Payment, error)
	// ListPeriod returns the payments due in [from, to), with their chain.
	ListPeriod(ctx context.Context, from, to time.Time) ([]*Payment, error)
	ListPaidForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Payment, error)
	ListPaidWithoutReceipt(ctx context.Context) ([]*Payment, error)

	Begin(ctx context.Context) (Tx, error)
}

type Tx interface {
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	SetStatus(ctx context.Context, p *Payment) error
	// RevokeReceipt marks the active receipt of a payment revoked and returns
	// its storage path, or "" when there was none.
	RevokeReceipt(ctx context.Context, paymentID uuid.UUID, at time.Time) (string, error)
	Commit() error
	Rollback() error
}

// Receipts issues and removes the artifacts backing paid payments.
type Receipts interface {
	Issue(ctx context.Context, p *Payment) (*Receipt, error)
	Purge(ctx context.Context, paths []string)
}

type Config struct {
	// PurgeOnRevoke deletes the stored artifact as soon as a payment is marked
	// unpaid. Otherwise revoked artifacts wait for an explicit purge.
	PurgeOnRevoke bool
	Now           func() time.Time
}

type Service struct {
	repo     Repository
	receipts Receipts
	cfg      Config
}

func NewService(repo Repository, receipts Receipts, cfg Config) *Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Service{repo: repo, receipts: receipts, cfg: cfg}
}

// MarkPaidResult is a paid payment along with the outcome of its receipt.
// ReceiptErr is set when the payment was recorded but its receipt could not be issued.
type MarkPaidResult struct {
	Payment    *Payment
	ReceiptErr error
}

// MarkPaid records a pending payment as paid on the current UTC day, then issues its receipt.
// The status change is committed before any storage I/O and survives a failed receipt.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*MarkPaidResult, error) {
	now := s.cfg.Now()

	err := txn.Run(ctx, s.repo.Begin, func(tx Tx) error {
		p, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if p.Paid() {
			return apperr.Conflict("payment %s is already paid", id)
		}

		p.Status = StatusPaid
		p.PaymentDate = new(lease.Day(now.UTC()))

		return tx.SetStatus(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("marking payment paid: %w", err)
	}

	metrics.PaymentTransitionsTotal.WithLabelValues(string(StatusPaid)).Inc()

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &MarkPaidResult{Payment: p}

	r, err := s.receipts.Issue(ctx, p)
	if err != nil {
		slog.Error("receipt generation failed, payment stays paid", "payment_id", id, "error", err)
		res.ReceiptErr = err

		return res, nil
	}

	p.Receipt = r

	return res, nil
}

// MarkUnpaid returns a paid payment to pending and revokes its receipt.
// A payment already pending is left untouched.
func (s *Service) MarkUnpaid(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var (
		revoked string
		changed bool
	)

	err := txn.Run(ctx, s.repo.Begin, func(tx Tx) error {
		p, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !p.Paid() {
			return nil
		}

		p.Status = StatusPending
		p.PaymentDate = nil

		if err := tx.SetStatus(ctx, p); err != nil {
			return err
		}

		changed = true
		revoked, err = tx.RevokeReceipt(ctx, id, s.cfg.Now())

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("marking payment unpaid: %w", err)
	}

	if changed {
		metrics.PaymentTransitionsTotal.WithLabelValues(string(StatusPending)).Inc()
	}

	if revoked != "" && s.cfg.PurgeOnRevoke {
		s.receipts.Purge(ctx, []string{revoked})
	}

	return s.repo.Get(ctx, id)
}

// Period lists the payments due in a calendar month with their aggregates.
type Period struct {
	Month      int
	Year       int
	Payments   []*Payment
	Statistics Statistics
}

func (s *Service) Period(ctx context.Context, month, year int) (*Period, error) {
	errs := &apperr.ValidationError{}
	if month < 1 || month > 12 {
		errs.Add("month", "must be between 1 and 12")
	}

	if year < 1900 || year > 9999 {
		errs.Add("year", "must be between 1900 and 9999")
	}

	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	payments, err := s.repo.ListPeriod(ctx, from, from.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	return &Period{
		Month:      month,
		Year:       year,
		Payments:   payments,
		Statistics: Summarize(payments, s.cfg.Now()),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForLease(ctx context.Context, leaseID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListForLease(ctx, leaseID)
}

// ListForTenant returns the paid payments of a tenant, newest first, with their receipt status.
func (s *Service) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListPaidForTenant(ctx, tenantID)
}
