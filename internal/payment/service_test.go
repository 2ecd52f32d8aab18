package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
)

var clock = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	repo     *payment.MockRepository
	tx       *payment.MockTx
	receipts *payment.MockReceipts
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	return &fixture{
		repo:     payment.NewMockRepository(ctrl),
		tx:       payment.NewMockTx(ctrl),
		receipts: payment.NewMockReceipts(ctrl),
	}
}

func (f *fixture) service(purge bool) *payment.Service {
	return payment.NewService(f.repo, f.receipts, payment.Config{
		PurgeOnRevoke: purge,
		Now:           func() time.Time { return clock },
	})
}

func pending(id uuid.UUID) *payment.Payment {
	return &payment.Payment{
		ID:      id,
		LeaseID: uuid.New(),
		DueDate: date(2024, 3, 1),
		Rent:    65000,
		Charges: 5000,
		Amount:  70000,
		Status:  payment.StatusPending,
	}
}

func TestService_MarkPaid(t *testing.T) {
	type testCase struct {
		name           string
		setup          func(f *fixture, id uuid.UUID)
		wantErr        error
		wantReceiptErr bool
	}

	tests := []testCase{
		{
			name: "Success",
			setup: func(f *fixture, id uuid.UUID) {
				p := pending(id)

				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
				f.tx.EXPECT().SetStatus(gomock.Any(), p).DoAndReturn(func(_ context.Context, p *payment.Payment) error {
					assert.Equal(t, payment.StatusPaid, p.Status)
					assert.Equal(t, date(2024, 3, 10), *p.PaymentDate)

					return nil
				})
				f.tx.EXPECT().Commit().Return(nil)
				f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)
				f.receipts.EXPECT().Issue(gomock.Any(), p).Return(&payment.Receipt{PaymentID: id, StoragePath: "x.pdf"}, nil)
			},
		},
		{
			name: "ReceiptFailureKeepsPaid",
			setup: func(f *fixture, id uuid.UUID) {
				p := pending(id)

				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
				f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
				f.tx.EXPECT().Commit().Return(nil)
				f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)
				f.receipts.EXPECT().Issue(gomock.Any(), p).Return(nil, apperr.Storage("uploading receipt", errors.New("bucket unreachable")))
			},
			wantReceiptErr: true,
		},
		{
			name: "AlreadyPaid",
			setup: func(f *fixture, id uuid.UUID) {
				p := pending(id)
				p.Status = payment.StatusPaid
				p.PaymentDate = new(date(2024, 3, 2))

				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name: "NotFound",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, apperr.NotFound("payment", id))
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := uuid.New()
			tt.setup(f, id)

			res, err := f.service(false).MarkPaid(context.Background(), id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, res.Payment.Paid())

			if tt.wantReceiptErr {
				assert.ErrorIs(t, res.ReceiptErr, apperr.ErrExternalStorage)
				assert.Nil(t, res.Payment.Receipt)

				return
			}

			assert.NoError(t, res.ReceiptErr)
			assert.True(t, res.Payment.HasReceipt())
		})
	}
}

func TestService_MarkPaid_UTCDay(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	p := pending(id)

	// 03:00 on March 11 in Nouméa is still March 10 in UTC.
	local := time.Date(2024, 3, 11, 3, 0, 0, 0, time.FixedZone("NCT", 11*3600))

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
	f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
	f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
	f.tx.EXPECT().Commit().Return(nil)
	f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)
	f.receipts.EXPECT().Issue(gomock.Any(), p).Return(&payment.Receipt{PaymentID: id}, nil)

	svc := payment.NewService(f.repo, f.receipts, payment.Config{Now: func() time.Time { return local }})

	res, err := svc.MarkPaid(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 10), *res.Payment.PaymentDate)
}

func TestService_MarkUnpaid(t *testing.T) {
	paid := func(id uuid.UUID) *payment.Payment {
		p := pending(id)
		p.Status = payment.StatusPaid
		p.PaymentDate = new(date(2024, 3, 2))

		return p
	}

	t.Run("RevokesAndDefersPurge", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		p := paid(id)

		f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
		f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
		f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
		f.tx.EXPECT().RevokeReceipt(gomock.Any(), id, clock).Return("tenant_1/2024/03/receipt_1.pdf", nil)
		f.tx.EXPECT().Commit().Return(nil)
		f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)

		got, err := f.service(false).MarkUnpaid(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, got.Status)
		assert.Nil(t, got.PaymentDate)
		assert.Equal(t, money.Cents(70000), got.Amount)
	})

	t.Run("PurgeOnRevoke", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		p := paid(id)

		f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
		f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
		f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
		f.tx.EXPECT().RevokeReceipt(gomock.Any(), id, clock).Return("tenant_1/2024/03/receipt_1.pdf", nil)
		f.tx.EXPECT().Commit().Return(nil)
		f.receipts.EXPECT().Purge(gomock.Any(), []string{"tenant_1/2024/03/receipt_1.pdf"})
		f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)

		_, err := f.service(true).MarkUnpaid(context.Background(), id)
		require.NoError(t, err)
	})

	t.Run("AlreadyPending", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		p := pending(id)

		f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
		f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
		f.tx.EXPECT().Commit().Return(nil)
		f.repo.EXPECT().Get(gomock.Any(), id).Return(p, nil)

		got, err := f.service(true).MarkUnpaid(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, got.Status)
	})

	t.Run("RevokeFailureRollsBack", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		p := paid(id)

		f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
		f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
		f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
		f.tx.EXPECT().RevokeReceipt(gomock.Any(), id, clock).Return("", errors.New("connection reset"))
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.service(false).MarkUnpaid(context.Background(), id)
		assert.Error(t, err)
	})
}

func TestService_Period(t *testing.T) {
	t.Run("Bounds", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().ListPeriod(gomock.Any(), date(2024, 12, 1), date(2025, 1, 1)).Return([]*payment.Payment{
			{Amount: 70000, Status: payment.StatusPaid, DueDate: date(2024, 12, 1)},
			{Amount: 50000, Status: payment.StatusPending, DueDate: date(2024, 12, 5)},
		}, nil)

		got, err := f.service(false).Period(context.Background(), 12, 2024)
		require.NoError(t, err)
		assert.Len(t, got.Payments, 2)
		assert.Equal(t, money.Cents(120000), got.Statistics.ExpectedAmount)
		assert.Equal(t, money.Cents(70000), got.Statistics.ReceivedAmount)
		assert.Equal(t, money.Cents(50000), got.Statistics.PendingAmount)
		assert.Equal(t, 0, got.Statistics.LatePayments)
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service(false).Period(context.Background(), 13, 2024)

		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "month")
	})
}
