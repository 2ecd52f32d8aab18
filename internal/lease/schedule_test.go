package lease_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
)

func dueDates(stubs []lease.Stub) []time.Time {
	out := make([]time.Time, len(stubs))
	for i, s := range stubs {
		out[i] = s.DueDate
	}

	return out
}

func TestGenerateSchedule(t *testing.T) {
	type testCase struct {
		name  string
		lease *lease.Lease
		want  []time.Time
	}

	tests := []testCase{
		{
			name:  "EndInclusive",
			lease: &lease.Lease{StartDate: date(2024, 1, 15), EndDate: ptr(date(2024, 4, 15))},
			want:  []time.Time{date(2024, 1, 15), date(2024, 2, 15), date(2024, 3, 15), date(2024, 4, 15)},
		},
		{
			name:  "LastPartialMonth",
			lease: &lease.Lease{StartDate: date(2024, 1, 15), EndDate: ptr(date(2024, 3, 20))},
			want:  []time.Time{date(2024, 1, 15), date(2024, 2, 15), date(2024, 3, 15)},
		},
		{
			name:  "ClampedToMonthLength",
			lease: &lease.Lease{StartDate: date(2024, 1, 31), EndDate: ptr(date(2024, 5, 1))},
			want:  []time.Time{date(2024, 1, 31), date(2024, 2, 29), date(2024, 3, 31), date(2024, 4, 30)},
		},
		{
			name:  "AcrossYear",
			lease: &lease.Lease{StartDate: date(2024, 11, 1), EndDate: ptr(date(2025, 2, 1))},
			want:  []time.Time{date(2024, 11, 1), date(2024, 12, 1), date(2025, 1, 1), date(2025, 2, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueDates(lease.GenerateSchedule(tt.lease)))
		})
	}
}

func TestGenerateSchedule_Amounts(t *testing.T) {
	l := &lease.Lease{
		StartDate: date(2024, 1, 15),
		EndDate:   ptr(date(2024, 4, 15)),
		RentValue: 65000,
		Charges:   5000,
	}

	stubs := lease.GenerateSchedule(l)
	require.Len(t, stubs, 4)

	for _, s := range stubs {
		assert.Equal(t, money.Cents(70000), s.Amount())
		assert.Equal(t, l.Total(), s.Amount())
	}
}

func TestGenerateSchedule_OpenEndedCap(t *testing.T) {
	stubs := lease.GenerateSchedule(&lease.Lease{StartDate: date(2024, 6, 1), RentValue: 50000})

	require.Len(t, stubs, lease.MaxOpenEndedStubs)
	assert.Equal(t, date(2024, 6, 1), stubs[0].DueDate)
	assert.Equal(t, date(2026, 5, 1), stubs[len(stubs)-1].DueDate)
}

func TestMissing(t *testing.T) {
	l := &lease.Lease{StartDate: date(2024, 1, 15), EndDate: ptr(date(2024, 4, 15))}
	stubs := lease.GenerateSchedule(l)

	assert.Empty(t, lease.Missing(stubs, dueDates(stubs)), "re-running must not duplicate months")

	existing := []time.Time{date(2024, 1, 15), date(2024, 2, 15)}
	assert.Equal(t, []time.Time{date(2024, 3, 15), date(2024, 4, 15)}, dueDates(lease.Missing(stubs, existing)))

	// Months are matched regardless of the day a payment was originally due.
	shifted := []time.Time{date(2024, 1, 1), date(2024, 2, 1), date(2024, 3, 1), date(2024, 4, 1)}
	assert.Empty(t, lease.Missing(stubs, shifted))
}
