package property

import (
	"time"

	"github.com/google/uuid"
)

// Property is a building owned by the landlord.
type Property struct {
	ID         uuid.UUID
	Name       string
	Address    string
	PostalCode string
	City       string
	Surface    float64 // Square meters
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Room is a rentable unit of a Property.
type Room struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	Number     string
	Surface    float64
	HasTV      bool
	HasShower  bool
	Property   *Property // Loaded via JOIN
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
