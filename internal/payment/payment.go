package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid
}

// Payment is one monthly obligation of a lease. Rent, Charges and Amount are
// snapshotted from the lease when the month is scheduled and never recomputed.
type Payment struct {
	ID          uuid.UUID
	LeaseID     uuid.UUID
	DueDate     time.Time
	Rent        money.Cents
	Charges     money.Cents
	Amount      money.Cents
	Status      Status
	PaymentDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Lease   *lease.Lease // Loaded via JOIN, with its chain
	Receipt *Receipt     // Loaded via LEFT JOIN, nil when never generated
}

func (p *Payment) Paid() bool {
	return p.Status == StatusPaid
}

// Late reports whether a pending payment was due before today.
func (p *Payment) Late(today time.Time) bool {
	return p.Status == StatusPending && p.DueDate.Before(lease.Day(today.UTC()))
}

// HasReceipt reports whether an active receipt backs the payment.
func (p *Payment) HasReceipt() bool {
	return p.Receipt != nil && p.Receipt.Active()
}

// Receipt is the stored artifact proving a payment. There is at most one per
// payment; revoking it keeps the row so a later re-payment overwrites it in place.
type Receipt struct {
	ID               uuid.UUID
	PaymentID        uuid.UUID
	StoragePath      string
	StorageURL       string
	VerificationHash string
	Signed           bool
	GeneratedAt      time.Time
	DownloadedAt     *time.Time
	RevokedAt        *time.Time
}

func (r *Receipt) Active() bool {
	return r.RevokedAt == nil
}

// Statistics aggregates the payments of a billing period.
type Statistics struct {
	ExpectedAmount money.Cents
	ReceivedAmount money.Cents
	PendingAmount  money.Cents
	LatePayments   int
}

func Summarize(payments []*Payment, today time.Time) Statistics {
	var st Statistics

	for _, p := range payments {
		st.ExpectedAmount += p.Amount

		if p.Paid() {
			st.ReceivedAmount += p.Amount
			continue
		}

		st.PendingAmount += p.Amount

		if p.Late(today) {
			st.LatePayments++
		}
	}

	return st
}
