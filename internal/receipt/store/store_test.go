package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/apperr"
	"github.com/Madofly35/GestLoc/internal/database"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/receipt/store"
)

func newStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(database.Wrap(db, time.Second)), mock
}

func TestStore_Save(t *testing.T) {
	paidOn := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	newReceipt := func() *payment.Receipt {
		return &payment.Receipt{
			PaymentID:        uuid.New(),
			StoragePath:      "tenant_1/2024/03/receipt_1.pdf",
			StorageURL:       "https://cdn/x",
			VerificationHash: "abcd",
			Signed:           true,
			GeneratedAt:      time.Now(),
			RevokedAt:        new(time.Now()),
		}
	}

	const query = "WITH paid AS \\(.* status = 'paid' AND payment_date = \\$7\\s+FOR SHARE.*INSERT INTO receipts .* ON CONFLICT \\(payment_id\\) DO UPDATE"

	t.Run("Paid", func(t *testing.T) {
		s, mock := newStore(t)
		id := uuid.New()
		r := newReceipt()

		mock.ExpectQuery(query).
			WithArgs(r.PaymentID, r.StoragePath, r.StorageURL, r.VerificationHash, true, r.GeneratedAt, paidOn).
			WillReturnRows(sqlmock.NewRows([]string{"id", "downloaded_at"}).AddRow(id.String(), nil))

		require.NoError(t, s.Save(context.Background(), r, paidOn))
		assert.Equal(t, id, r.ID)
		assert.Nil(t, r.RevokedAt)
		assert.Nil(t, r.DownloadedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoLongerPaid", func(t *testing.T) {
		s, mock := newStore(t)
		r := newReceipt()

		mock.ExpectQuery(query).
			WithArgs(r.PaymentID, r.StoragePath, r.StorageURL, r.VerificationHash, true, r.GeneratedAt, paidOn).
			WillReturnRows(sqlmock.NewRows([]string{"id", "downloaded_at"}))

		err := s.Save(context.Background(), r, paidOn)
		assert.ErrorIs(t, err, apperr.ErrConflict)
		assert.Equal(t, uuid.Nil, r.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_TouchDownloaded_NotFound(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectExec("UPDATE receipts SET downloaded_at").WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.TouchDownloaded(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_DeleteRevoked(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectQuery("DELETE FROM receipts WHERE revoked_at IS NOT NULL").
		WillReturnRows(sqlmock.NewRows([]string{"storage_path"}).AddRow("a.pdf").AddRow("b.pdf"))

	paths, err := s.DeleteRevoked(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, paths)
}
