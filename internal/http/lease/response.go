package lease

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/lease"
	"github.com/Madofly35/GestLoc/internal/money"
)

type leaseResponse struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenant_id"`
	RoomID    uuid.UUID      `json:"room_id"`
	StartDate httpx.Date     `json:"start_date"`
	EndDate   *httpx.Date    `json:"end_date"`
	RentValue money.Cents    `json:"rent_value"`
	Charges   money.Cents    `json:"charges"`
	Total     money.Cents    `json:"total"`
	Tenant    *tenantSummary `json:"tenant,omitempty"`
	Room      *roomSummary   `json:"room,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type tenantSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type roomSummary struct {
	ID           uuid.UUID `json:"id"`
	Number       string    `json:"room_number"`
	PropertyID   uuid.UUID `json:"property_id"`
	PropertyName string    `json:"property_name,omitempty"`
}

func toResponse(l *lease.Lease) leaseResponse {
	resp := leaseResponse{
		ID:        l.ID,
		TenantID:  l.TenantID,
		RoomID:    l.RoomID,
		StartDate: httpx.Date{Time: l.StartDate},
		EndDate:   httpx.DatePtr(l.EndDate),
		RentValue: l.RentValue,
		Charges:   l.Charges,
		Total:     l.Total(),
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}

	if t := l.Tenant; t != nil {
		resp.Tenant = &tenantSummary{ID: t.ID, FirstName: t.FirstName, LastName: t.LastName, Email: t.Email}
	}

	if room := l.Room; room != nil {
		resp.Room = &roomSummary{ID: room.ID, Number: room.Number, PropertyID: room.PropertyID}

		if room.Property != nil {
			resp.Room.PropertyName = room.Property.Name
		}
	}

	return resp
}

func toResponseList(leases []*lease.Lease) []leaseResponse {
	resp := make([]leaseResponse, len(leases))
	for i, l := range leases {
		resp[i] = toResponse(l)
	}

	return resp
}

type stubResponse struct {
	DueDate httpx.Date  `json:"due_date"`
	Rent    money.Cents `json:"rent"`
	Charges money.Cents `json:"charges"`
	Amount  money.Cents `json:"amount"`
}

func toStubResponseList(stubs []lease.Stub) []stubResponse {
	resp := make([]stubResponse, len(stubs))
	for i, s := range stubs {
		resp[i] = stubResponse{
			DueDate: httpx.Date{Time: s.DueDate},
			Rent:    s.Rent,
			Charges: s.Charges,
			Amount:  s.Amount(),
		}
	}

	return resp
}
