package verification_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/property"
	"github.com/Madofly35/GestLoc/internal/receipt"
	"github.com/Madofly35/GestLoc/internal/tenant"
	"github.com/Madofly35/GestLoc/internal/verification"
)

var (
	now    = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	hasher = receipt.NewHasher("s3cret")
)

func paidWithReceipt() (*payment.Payment, string) {
	p := &payment.Payment{
		ID:          uuid.New(),
		LeaseID:     uuid.New(),
		Amount:      70000,
		Status:      payment.StatusPaid,
		PaymentDate: new(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)),
	}
	p.Lease = &lease.Lease{
		ID:     p.LeaseID,
		Tenant: &tenant.Tenant{FirstName: "Jeanne", LastName: "Martin"},
		Room:   &property.Room{Number: "12", Property: &property.Property{Name: "Lilas"}},
	}

	hash := hasher.Sum(p.ID, p.LeaseID, *p.PaymentDate)
	p.Receipt = &payment.Receipt{
		PaymentID:        p.ID,
		VerificationHash: hash,
		GeneratedAt:      time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}

	return p, hash
}

func TestService_Verify(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(p *payment.Payment)
		wantValid bool
	}

	tests := []testCase{
		{
			name:      "Valid",
			wantValid: true,
		},
		{
			name:   "GeneratedInFuture",
			mutate: func(p *payment.Payment) { p.Receipt.GeneratedAt = now.Add(time.Hour) },
		},
		{
			name:   "IncompleteChain",
			mutate: func(p *payment.Payment) { p.Lease.Room.Property = nil },
		},
		{
			name:   "PaymentDateChanged",
			mutate: func(p *payment.Payment) { p.PaymentDate = new(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := verification.NewMockRepository(ctrl)

			p, hash := paidWithReceipt()
			if tt.mutate != nil {
				tt.mutate(p)
			}

			repo.EXPECT().FindByHash(gomock.Any(), hash).Return(p, nil)

			svc := verification.NewService(repo, hasher, func() time.Time { return now })

			got, err := svc.Verify(context.Background(), strings.ToUpper(hash))
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.IsValid)
			assert.Equal(t, verification.DocumentType, got.Type)
			assert.Equal(t, money.Cents(70000), got.Amount)

			if tt.wantValid {
				assert.Equal(t, "Jeanne Martin", got.Tenant)
				assert.Equal(t, "Lilas", got.Property)
			}
		})
	}
}

func TestService_Verify_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := verification.NewMockRepository(ctrl)
	svc := verification.NewService(repo, hasher, nil)

	_, err := svc.Verify(context.Background(), "bogus")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	unknown := strings.Repeat("ab", 32)
	repo.EXPECT().FindByHash(gomock.Any(), unknown).Return(nil, apperr.NotFound("receipt", unknown))

	_, err = svc.Verify(context.Background(), unknown)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
