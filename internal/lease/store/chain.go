package store

import (
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/property"
	"github.com/Madofly35/GestLoc/internal/tenant"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Columns selects a lease together with its tenant, room and property. Use it
// with ChainJoin, which aliases the tables l, t, ro and p.
const Columns = `
	l.id, l.tenant_id, l.room_id, l.start_date, l.end_date, l.rent_value, l.charges, l.created_at, l.updated_at,
	t.id, t.first_name, t.last_name, t.date_of_birth, t.email, t.phone, t.created_at, t.updated_at,
	ro.id, ro.property_id, ro.room_number, ro.surface, ro.has_tv, ro.has_shower, ro.created_at, ro.updated_at,
	p.id, p.name, p.address, p.postal_code, p.city, p.surface, p.created_at, p.updated_at`

const ChainJoin = `
	JOIN tenants t ON t.id = l.tenant_id
	JOIN rooms ro ON ro.id = l.room_id
	JOIN properties p ON p.id = ro.property_id`

// ScanChain reads the columns listed in Columns, in order, after any extra
// destinations the caller selected first.
func ScanChain(s Scanner, extra ...any) (*lease.Lease, error) {
	var (
		l  lease.Lease
		t  tenant.Tenant
		ro property.Room
		p  property.Property
	)

	dest := append(extra,
		&l.ID, &l.TenantID, &l.RoomID, &l.StartDate, &l.EndDate, &l.RentValue, &l.Charges, &l.CreatedAt, &l.UpdatedAt,
		&t.ID, &t.FirstName, &t.LastName, &t.DateOfBirth, &t.Email, &t.Phone, &t.CreatedAt, &t.UpdatedAt,
		&ro.ID, &ro.PropertyID, &ro.Number, &ro.Surface, &ro.HasTV, &ro.HasShower, &ro.CreatedAt, &ro.UpdatedAt,
		&p.ID, &p.Name, &p.Address, &p.PostalCode, &p.City, &p.Surface, &p.CreatedAt, &p.UpdatedAt,
	)

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	ro.Property = &p
	l.Tenant = &t
	l.Room = &ro

	return &l, nil
}
