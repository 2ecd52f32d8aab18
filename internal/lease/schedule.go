package lease

import (
	"time"

	"github.com/Madofly35/GestLoc/internal/money"
)

// MaxOpenEndedStubs caps the schedule of a lease without an end date.
const MaxOpenEndedStubs = 24

// Stub is one monthly obligation derived from a lease.
type Stub struct {
	DueDate time.Time
	Rent    money.Cents
	Charges money.Cents
}

func (s Stub) Amount() money.Cents {
	return s.Rent + s.Charges
}

// GenerateSchedule emits one stub per month starting at the lease start, on the
// same day of month clamped to the month length, while the due date is not after
// the end date. Open-ended leases stop after MaxOpenEndedStubs.
func GenerateSchedule(l *Lease) []Stub {
	var stubs []Stub

	for i := 0; ; i++ {
		if l.EndDate == nil && i >= MaxOpenEndedStubs {
			break
		}

		due := dueDate(l.StartDate, i)
		if l.EndDate != nil && due.After(*l.EndDate) {
			break
		}

		stubs = append(stubs, Stub{DueDate: due, Rent: l.RentValue, Charges: l.Charges})
	}

	return stubs
}

func dueDate(start time.Time, offset int) time.Time {
	y, m, d := start.Date()

	first := time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first); d > last {
		d = last
	}

	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(monthStart time.Time) int {
	return monthStart.AddDate(0, 1, -1).Day()
}

// Missing drops the stubs whose month already has a payment among existing due dates.
func Missing(stubs []Stub, existing []time.Time) []Stub {
	type month struct {
		year  int
		month time.Month
	}

	seen := make(map[month]struct{}, len(existing))
	for _, d := range existing {
		seen[month{d.Year(), d.Month()}] = struct{}{}
	}

	var out []Stub

	for _, s := range stubs {
		if _, ok := seen[month{s.DueDate.Year(), s.DueDate.Month()}]; ok {
			continue
		}

		out = append(out, s)
	}

	return out
}
