package lease_test

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
	"github.com/Madofly35/GestLoc/internal/lease"
)

type fixture struct {
	repo   *lease.MockRepository
	tx     *lease.MockTx
	purger *lease.MockPurger
	svc    *lease.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:   lease.NewMockRepository(ctrl),
		tx:     lease.NewMockTx(ctrl),
		purger: lease.NewMockPurger(ctrl),
	}
	f.svc = lease.NewService(f.repo, f.purger)

	return f
}

func (f *fixture) begin() {
	f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil)
}

func TestService_Create(t *testing.T) {
	tenantID, roomID := uuid.New(), uuid.New()
	existing := &lease.Lease{ID: uuid.New(), RoomID: roomID, StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 1))}

	params := func(start time.Time, end *time.Time) lease.Params {
		return lease.Params{
			TenantID:  tenantID,
			RoomID:    roomID,
			StartDate: start,
			EndDate:   end,
			RentValue: 50000,
			Charges:   4000,
		}
	}

	type testCase struct {
		name    string
		params  lease.Params
		setup   func(f *fixture)
		wantErr error
	}

	tests := []testCase{
		{
			name:   "BackToBack",
			params: params(date(2024, 6, 1), ptr(date(2024, 9, 1))),
			setup: func(f *fixture) {
				var created uuid.UUID

				f.begin()
				f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
				f.tx.EXPECT().TenantExists(gomock.Any(), tenantID).Return(true, nil)
				f.tx.EXPECT().RoomLeases(gomock.Any(), roomID).Return([]*lease.Lease{existing}, nil)
				f.tx.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l *lease.Lease) error {
					l.ID = uuid.New()
					created = l.ID

					return nil
				})
				f.tx.EXPECT().CreatePayments(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, id uuid.UUID, stubs []lease.Stub) error {
						assert.Equal(t, created, id)
						assert.Len(t, stubs, 4)

						return nil
					})
				f.tx.EXPECT().Commit().Return(nil)
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, id uuid.UUID) (*lease.Lease, error) {
					return &lease.Lease{ID: id, RoomID: roomID, TenantID: tenantID}, nil
				})
			},
		},
		{
			name:   "Overlap",
			params: params(date(2024, 5, 1), ptr(date(2024, 8, 1))),
			setup: func(f *fixture) {
				f.begin()
				f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
				f.tx.EXPECT().TenantExists(gomock.Any(), tenantID).Return(true, nil)
				f.tx.EXPECT().RoomLeases(gomock.Any(), roomID).Return([]*lease.Lease{existing}, nil)
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrConflict,
		},
		{
			name:   "UnknownTenant",
			params: params(date(2025, 1, 1), nil),
			setup: func(f *fixture) {
				f.begin()
				f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
				f.tx.EXPECT().TenantExists(gomock.Any(), tenantID).Return(false, nil)
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:   "UnknownRoom",
			params: params(date(2025, 1, 1), nil),
			setup: func(f *fixture) {
				f.begin()
				f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(apperr.NotFound("room", roomID))
				f.tx.EXPECT().Rollback().Return(nil)
			},
			wantErr: apperr.ErrNotFound,
		},
		{
			name:    "EndBeforeStart",
			params:  params(date(2024, 6, 1), ptr(date(2024, 5, 1))),
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "NegativeRent",
			params:  func() lease.Params { p := params(date(2024, 6, 1), nil); p.RentValue = -1; return p }(),
			wantErr: apperr.ErrValidation,
		},
		{
			name:   "PoolExhausted",
			params: params(date(2025, 1, 1), nil),
			setup: func(f *fixture) {
				f.repo.EXPECT().Begin(gomock.Any()).Return(nil, apperr.ErrUnavailable)
			},
			wantErr: apperr.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			got, err := f.svc.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_Create_OverlapDetails(t *testing.T) {
	f := newFixture(t)
	roomID := uuid.New()
	existing := &lease.Lease{ID: uuid.New(), RoomID: roomID, StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 1))}

	f.begin()
	f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
	f.tx.EXPECT().TenantExists(gomock.Any(), gomock.Any()).Return(true, nil)
	f.tx.EXPECT().RoomLeases(gomock.Any(), roomID).Return([]*lease.Lease{existing}, nil)
	f.tx.EXPECT().Rollback().Return(nil)

	_, err := f.svc.Create(context.Background(), lease.Params{
		TenantID:  uuid.New(),
		RoomID:    roomID,
		StartDate: date(2024, 3, 1),
	})

	var overlap *lease.OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, existing.ID, overlap.LeaseID)
}

func TestService_Update_ExcludesSelf(t *testing.T) {
	f := newFixture(t)
	tenantID, roomID := uuid.New(), uuid.New()
	current := &lease.Lease{
		ID:        uuid.New(),
		TenantID:  tenantID,
		RoomID:    roomID,
		StartDate: date(2024, 1, 1),
		EndDate:   ptr(date(2024, 6, 1)),
		RentValue: 50000,
	}
	stored := *current

	f.begin()
	f.tx.EXPECT().GetForUpdate(gomock.Any(), current.ID).Return(current, nil)
	f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
	f.tx.EXPECT().RoomLeases(gomock.Any(), roomID).Return([]*lease.Lease{&stored}, nil)
	f.tx.EXPECT().Update(gomock.Any(), current).Return(nil)
	f.tx.EXPECT().DeletePendingBefore(gomock.Any(), current.ID, date(2024, 1, 1)).Return(0, nil)
	f.tx.EXPECT().DeletePendingAfter(gomock.Any(), current.ID, date(2024, 9, 1)).Return(0, nil)
	f.tx.EXPECT().DueDates(gomock.Any(), current.ID).Return([]time.Time{
		date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1), date(2024, 4, 1), date(2024, 5, 1), date(2024, 6, 1),
	}, nil)
	f.tx.EXPECT().CreatePayments(gomock.Any(), current.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, stubs []lease.Stub) error {
			require.Len(t, stubs, 3)
			assert.Equal(t, date(2024, 7, 1), stubs[0].DueDate)
			assert.Equal(t, date(2024, 9, 1), stubs[2].DueDate)

			return nil
		})
	f.tx.EXPECT().Commit().Return(nil)
	f.repo.EXPECT().Get(gomock.Any(), current.ID).Return(current, nil)

	got, err := f.svc.Update(context.Background(), current.ID, lease.Params{
		TenantID:  tenantID,
		RoomID:    roomID,
		StartDate: date(2024, 1, 1),
		EndDate:   ptr(date(2024, 9, 1)),
		RentValue: 50000,
	})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 9, 1), *got.EndDate)
}

func TestService_Update_StartMovedLater(t *testing.T) {
	f := newFixture(t)
	tenantID, roomID := uuid.New(), uuid.New()
	current := &lease.Lease{
		ID:        uuid.New(),
		TenantID:  tenantID,
		RoomID:    roomID,
		StartDate: date(2024, 1, 1),
		EndDate:   ptr(date(2024, 6, 1)),
		RentValue: 50000,
	}

	f.begin()
	f.tx.EXPECT().GetForUpdate(gomock.Any(), current.ID).Return(current, nil)
	f.tx.EXPECT().LockRoom(gomock.Any(), roomID).Return(nil)
	f.tx.EXPECT().RoomLeases(gomock.Any(), roomID).Return(nil, nil)
	f.tx.EXPECT().Update(gomock.Any(), current).Return(nil)
	f.tx.EXPECT().DeletePendingBefore(gomock.Any(), current.ID, date(2024, 3, 1)).Return(2, nil)
	f.tx.EXPECT().DeletePendingAfter(gomock.Any(), current.ID, date(2024, 6, 1)).Return(0, nil)
	f.tx.EXPECT().DueDates(gomock.Any(), current.ID).Return([]time.Time{
		date(2024, 3, 1), date(2024, 4, 1), date(2024, 5, 1), date(2024, 6, 1),
	}, nil)
	f.tx.EXPECT().Commit().Return(nil)
	f.repo.EXPECT().Get(gomock.Any(), current.ID).Return(current, nil)

	got, err := f.svc.Update(context.Background(), current.ID, lease.Params{
		TenantID:  tenantID,
		RoomID:    roomID,
		StartDate: date(2024, 3, 1),
		EndDate:   ptr(date(2024, 6, 1)),
		RentValue: 50000,
	})
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), got.StartDate)
}

func TestService_Update_MoveRoomLocksBoth(t *testing.T) {
	f := newFixture(t)
	tenantID := uuid.New()
	from, to := uuid.New(), uuid.New()
	current := &lease.Lease{ID: uuid.New(), TenantID: tenantID, RoomID: from, StartDate: date(2024, 1, 1)}

	f.begin()
	f.tx.EXPECT().GetForUpdate(gomock.Any(), current.ID).Return(current, nil)
	f.tx.EXPECT().LockRoom(gomock.Any(), from).Return(nil)
	f.tx.EXPECT().LockRoom(gomock.Any(), to).Return(nil)
	f.tx.EXPECT().RoomLeases(gomock.Any(), to).Return([]*lease.Lease{
		{ID: uuid.New(), RoomID: to, StartDate: date(2023, 1, 1)},
	}, nil)
	f.tx.EXPECT().Rollback().Return(nil)

	_, err := f.svc.Update(context.Background(), current.ID, lease.Params{
		TenantID:  tenantID,
		RoomID:    to,
		StartDate: date(2024, 1, 1),
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestService_Terminate(t *testing.T) {
	t.Run("DropsPendingAfterEnd", func(t *testing.T) {
		f := newFixture(t)
		current := &lease.Lease{ID: uuid.New(), TenantID: uuid.New(), RoomID: uuid.New(), StartDate: date(2024, 1, 1)}

		f.begin()
		f.tx.EXPECT().GetForUpdate(gomock.Any(), current.ID).Return(current, nil)
		f.tx.EXPECT().LockRoom(gomock.Any(), current.RoomID).Return(nil)
		f.tx.EXPECT().RoomLeases(gomock.Any(), current.RoomID).Return([]*lease.Lease{current}, nil)
		f.tx.EXPECT().Update(gomock.Any(), current).Return(nil)
		f.tx.EXPECT().DeletePendingBefore(gomock.Any(), current.ID, date(2024, 1, 1)).Return(0, nil)
		f.tx.EXPECT().DeletePendingAfter(gomock.Any(), current.ID, date(2024, 3, 1)).Return(21, nil)
		f.tx.EXPECT().DueDates(gomock.Any(), current.ID).Return([]time.Time{
			date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1),
		}, nil)
		f.tx.EXPECT().Commit().Return(nil)
		f.repo.EXPECT().Get(gomock.Any(), current.ID).Return(current, nil)

		got, err := f.svc.Terminate(context.Background(), current.ID, time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, date(2024, 3, 1), *got.EndDate)
	})

	t.Run("EndNotAfterStart", func(t *testing.T) {
		f := newFixture(t)
		current := &lease.Lease{ID: uuid.New(), RoomID: uuid.New(), StartDate: date(2024, 1, 1)}

		f.begin()
		f.tx.EXPECT().GetForUpdate(gomock.Any(), current.ID).Return(current, nil)
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.svc.Terminate(context.Background(), current.ID, date(2024, 1, 1))
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()

		f.begin()
		f.tx.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, apperr.NotFound("lease", id))
		f.tx.EXPECT().Rollback().Return(nil)

		_, err := f.svc.Terminate(context.Background(), id, date(2024, 1, 1))
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_Schedule_Idempotent(t *testing.T) {
	f := newFixture(t)
	l := &lease.Lease{ID: uuid.New(), StartDate: date(2024, 1, 15), EndDate: ptr(date(2024, 4, 15))}
	all := []time.Time{date(2024, 1, 15), date(2024, 2, 15), date(2024, 3, 15), date(2024, 4, 15)}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.tx, nil).Times(2)
	f.tx.EXPECT().GetForUpdate(gomock.Any(), l.ID).Return(l, nil).Times(2)
	gomock.InOrder(
		f.tx.EXPECT().DueDates(gomock.Any(), l.ID).Return(all[:2], nil),
		f.tx.EXPECT().DueDates(gomock.Any(), l.ID).Return(all, nil),
	)
	f.tx.EXPECT().CreatePayments(gomock.Any(), l.ID, gomock.Len(2)).Return(nil)
	f.tx.EXPECT().Commit().Return(nil).Times(2)

	added, err := f.svc.Schedule(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Len(t, added, 2)

	added, err = f.svc.Schedule(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Empty(t, added)
}

func TestService_HasOverlap(t *testing.T) {
	f := newFixture(t)
	roomID := uuid.New()
	existing := &lease.Lease{ID: uuid.New(), RoomID: roomID, StartDate: date(2024, 1, 1), EndDate: ptr(date(2024, 6, 1))}

	f.repo.EXPECT().ListForRoom(gomock.Any(), roomID).Return([]*lease.Lease{existing}, nil).Times(3)

	got, err := f.svc.HasOverlap(context.Background(), roomID, date(2024, 3, 1), nil, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = f.svc.HasOverlap(context.Background(), roomID, date(2024, 6, 1), nil, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = f.svc.HasOverlap(context.Background(), roomID, date(2024, 3, 1), nil, existing.ID)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	paths := []string{"tenant_1/2024/01/receipt_1.pdf"}

	f.repo.EXPECT().Delete(gomock.Any(), id).Return(paths, nil)
	f.purger.EXPECT().Purge(gomock.Any(), paths)

	require.NoError(t, f.svc.Delete(context.Background(), id))
}
