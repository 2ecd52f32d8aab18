package payment_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Madofly35/GestLoc/internal/apperr"
	handler "github.com/Madofly35/GestLoc/internal/http/payment"
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/property"
	"github.com/Madofly35/GestLoc/internal/tenant"
)

var today = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *payment.MockRepository
	tx       *payment.MockTx
	receipts *payment.MockReceipts
	router   chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:     payment.NewMockRepository(ctrl),
		tx:       payment.NewMockTx(ctrl),
		receipts: payment.NewMockReceipts(ctrl),
		router:   chi.NewRouter(),
	}

	svc := payment.NewService(f.repo, f.receipts, payment.Config{Now: func() time.Time { return today }})
	f.router.Route("/payments", handler.NewHandler(svc).Routes)

	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	return rec
}

func withChain(p *payment.Payment) *payment.Payment {
	p.Lease = &lease.Lease{
		ID:     p.LeaseID,
		Tenant: &tenant.Tenant{FirstName: "Jeanne", LastName: "Martin"},
		Room: &property.Room{
			Number:   "3",
			Property: &property.Property{Name: "Résidence Lilas"},
		},
	}

	return p
}

func newPayment(status payment.Status, due time.Time, amount int64) *payment.Payment {
	return &payment.Payment{
		ID:      uuid.New(),
		LeaseID: uuid.New(),
		DueDate: due,
		Amount:  money.Cents(amount),
		Status:  status,
	}
}

func TestHandler_Period(t *testing.T) {
	type testCase struct {
		name       string
		target     string
		setup      func(f *fixture)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name:   "Statistics",
			target: "/payments/3/2024",
			setup: func(f *fixture) {
				from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

				f.repo.EXPECT().ListPeriod(gomock.Any(), from, from.AddDate(0, 1, 0)).Return([]*payment.Payment{
					withChain(newPayment(payment.StatusPaid, from, 70000)),
					withChain(newPayment(payment.StatusPending, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), 50000)),
					withChain(newPayment(payment.StatusPending, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), 45000)),
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody: `{
				"expected_amount": 1650.00,
				"received_amount": 700.00,
				"pending_amount": 950.00,
				"late_payments": 1
			}`,
		},
		{
			name:       "MonthOutOfRange",
			target:     "/payments/13/2024",
			setup:      func(*fixture) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NotANumber",
			target:     "/payments/march/2024",
			setup:      func(*fixture) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)

			rec := f.do(http.MethodGet, tt.target)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody == "" {
				return
			}

			var body struct {
				Month      int             `json:"month"`
				Year       int             `json:"year"`
				Payments   []any           `json:"payments"`
				Statistics json.RawMessage `json:"statistics"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			assert.Equal(t, 3, body.Month)
			assert.Equal(t, 2024, body.Year)
			assert.Len(t, body.Payments, 3)
			assert.JSONEq(t, tt.wantBody, string(body.Statistics))
		})
	}
}

func TestHandler_MarkPaid(t *testing.T) {
	type testCase struct {
		name       string
		setup      func(f *fixture, id uuid.UUID)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}

	tests := []testCase{
		{
			name: "ReceiptFailureIsPartialSuccess",
			setup: func(f *fixture, id uuid.UUID) {
				p := newPayment(payment.StatusPending, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 70000)
				p.ID = id

				paid := withChain(newPayment(payment.StatusPaid, p.DueDate, 70000))
				paid.ID = id
				paid.PaymentDate = new(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
				f.tx.EXPECT().SetStatus(gomock.Any(), p).Return(nil)
				f.tx.EXPECT().Commit().Return(nil)
				f.repo.EXPECT().Get(gomock.Any(), id).Return(paid, nil)
				f.receipts.EXPECT().Issue(gomock.Any(), paid).Return(nil, apperr.Storage("uploading receipt", errors.New("timeout")))
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "paid", body["status"])
				assert.Equal(t, "2024-03-15", body["payment_date"])
				assert.Equal(t, "Jeanne Martin", body["tenant_name"])
				assert.Equal(t, "Résidence Lilas", body["property_name"])
				assert.Equal(t, false, body["has_receipt"])
				assert.Contains(t, body["receipt_error"], "timeout")
			},
		},
		{
			name: "AlreadyPaid",
			setup: func(f *fixture, id uuid.UUID) {
				p := newPayment(payment.StatusPaid, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 70000)

				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(p, nil)
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Unknown",
			setup: func(f *fixture, id uuid.UUID) {
				f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
				f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, apperr.NotFound("payment", id))
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			id := uuid.New()
			tt.setup(f, id)

			rec := f.do(http.MethodPut, "/payments/"+id.String()+"/mark-paid")

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			if tt.check != nil {
				tt.check(t, body)
			} else {
				assert.Equal(t, "error", body["status"])
			}
		})
	}
}

func TestHandler_InvalidID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPut, "/payments/not-a-uuid/mark-unpaid")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "must be a valid UUID")
}
