package property

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/property"
)

type propertyResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	PostalCode string    `json:"postal_code"`
	City       string    `json:"city"`
	Surface    float64   `json:"surface"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type roomResponse struct {
	ID         uuid.UUID         `json:"id"`
	PropertyID uuid.UUID         `json:"property_id"`
	Number     string            `json:"room_number"`
	Surface    float64           `json:"surface"`
	HasTV      bool              `json:"has_tv"`
	HasShower  bool              `json:"has_shower"`
	Property   *propertyResponse `json:"property,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func toResponse(p *property.Property) propertyResponse {
	return propertyResponse{
		ID:         p.ID,
		Name:       p.Name,
		Address:    p.Address,
		PostalCode: p.PostalCode,
		City:       p.City,
		Surface:    p.Surface,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toResponseList(props []*property.Property) []propertyResponse {
	resp := make([]propertyResponse, len(props))
	for i, p := range props {
		resp[i] = toResponse(p)
	}

	return resp
}

func toRoomResponse(r *property.Room) roomResponse {
	resp := roomResponse{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		Number:     r.Number,
		Surface:    r.Surface,
		HasTV:      r.HasTV,
		HasShower:  r.HasShower,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if r.Property != nil {
		resp.Property = new(toResponse(r.Property))
	}

	return resp
}

func toRoomResponseList(rooms []*property.Room) []roomResponse {
	resp := make([]roomResponse, len(rooms))
	for i, r := range rooms {
		resp[i] = toRoomResponse(r)
	}

	return resp
}
