package lease

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/property"
	"github.com/Madofly35/GestLoc/internal/tenant"
)

// Lease binds a tenant to a room from StartDate until EndDate (exclusive).
// A nil EndDate means the lease is ongoing.
type Lease struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	RoomID    uuid.UUID
	StartDate time.Time
	EndDate   *time.Time
	RentValue money.Cents
	Charges   money.Cents
	CreatedAt time.Time
	UpdatedAt time.Time

	Tenant *tenant.Tenant // Loaded via JOIN
	Room   *property.Room // Loaded via JOIN, with its Property
}

// Total is the monthly amount due: rent plus charges.
func (l *Lease) Total() money.Cents {
	return l.RentValue + l.Charges
}

func (l *Lease) Interval() Interval {
	return Interval{Start: l.StartDate, End: l.EndDate}
}

// ActiveOn reports whether the lease covers day.
func (l *Lease) ActiveOn(day time.Time) bool {
	return l.Interval().Contains(day)
}

// Complete reports whether the tenant, room and property are all loaded.
func (l *Lease) Complete() bool {
	return l.Tenant != nil && l.Room != nil && l.Room.Property != nil
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
