package tenant

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Email       string
	Phone       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}
