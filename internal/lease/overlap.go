package lease

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/apperr"
)

// FarFuture stands in for the missing end of an open-ended lease.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Interval is the half-open occupancy range [Start, End). A nil End is unbounded.
type Interval struct {
	Start time.Time
	End   *time.Time
}

func (i Interval) end() time.Time {
	if i.End == nil {
		return FarFuture
	}

	return *i.End
}

// Overlaps implements the half-open rule s1 < e2 && s2 < e1, so a lease ending
// on the day another begins does not collide with it.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.end()) && o.Start.Before(i.end())
}

func (i Interval) Contains(day time.Time) bool {
	return !day.Before(i.Start) && day.Before(i.end())
}

func (i Interval) String() string {
	if i.End == nil {
		return fmt.Sprintf("[%s, open)", i.Start.Format(time.DateOnly))
	}

	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.DateOnly), i.End.Format(time.DateOnly))
}

// OverlapError reports the existing lease a candidate interval collides with.
type OverlapError struct {
	LeaseID  uuid.UUID
	Existing Interval
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("room is already leased over %s by lease %s", e.Existing, e.LeaseID)
}

func (e *OverlapError) Unwrap() error { return apperr.ErrConflict }

// FindOverlap returns the first lease of existing colliding with candidate,
// ignoring the lease identified by exclude (the one being updated).
func FindOverlap(existing []*Lease, candidate Interval, exclude uuid.UUID) *Lease {
	for _, l := range existing {
		if exclude != uuid.Nil && l.ID == exclude {
			continue
		}

		if l.Interval().Overlaps(candidate) {
			return l
		}
	}

	return nil
}

// CheckOverlap returns an *OverlapError when candidate collides with a lease of existing.
func CheckOverlap(existing []*Lease, candidate Interval, exclude uuid.UUID) error {
	l := FindOverlap(existing, candidate, exclude)
	if l == nil {
		return nil
	}

	return &OverlapError{LeaseID: l.ID, Existing: l.Interval()}
}
