// Package verification answers public authenticity checks of receipts.
package verification

import (
	"context"
	"strings"
	"time"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/receipt"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=verification
type Repository interface {
	// FindByHash loads the payment, with chain and receipt, of the active receipt carrying hash.
	FindByHash(ctx context.Context, hash string) (*payment.Payment, error)
}

const DocumentType = "Quittance de loyer"

// Result describes a receipt found by its verification hash.
type Result struct {
	IsValid  bool
	Type     string
	Date     time.Time
	Tenant   string
	Property string
	Amount   money.Cents
}

type Service struct {
	repo   Repository
	hasher *receipt.Hasher
	now    func() time.Time
}

func NewService(repo Repository, hasher *receipt.Hasher, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{repo: repo, hasher: hasher, now: now}
}

// Verify looks a receipt up by hash. Unknown or malformed hashes are not found.
// A found receipt is invalid when it claims to be generated in the future, its
// chain is incomplete or its hash no longer matches the payment it points to.
func (s *Service) Verify(ctx context.Context, hash string) (*Result, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if len(hash) != receipt.HashLen {
		return nil, apperr.NotFound("receipt", hash)
	}

	p, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	if p.Receipt == nil {
		return nil, apperr.NotFound("receipt", hash)
	}

	res := &Result{
		IsValid: true,
		Type:    DocumentType,
		Date:    p.Receipt.GeneratedAt,
		Amount:  p.Amount,
	}

	if p.Lease == nil || !p.Lease.Complete() {
		res.IsValid = false
	} else {
		res.Tenant = p.Lease.Tenant.FullName()
		res.Property = p.Lease.Room.Property.Name
	}

	if p.Receipt.GeneratedAt.After(s.now()) {
		res.IsValid = false
	}

	if !p.Paid() || p.PaymentDate == nil || !s.hasher.Verify(hash, p.ID, p.LeaseID, *p.PaymentDate) {
		res.IsValid = false
	}

	return res, nil
}
