package document

import (
	"time"

	"github.com/google/uuid"
)

// Type selects the bucket a tenant document is kept in.
type Type string

const (
	TypeContract Type = "contracts"
	TypeDocument Type = "documents"
	TypeTicket   Type = "tickets"
)

func (t Type) Valid() bool {
	switch t {
	case TypeContract, TypeDocument, TypeTicket:
		return true
	}

	return false
}

type Document struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Type        Type
	Name        string
	StoragePath string
	MimeType    string
	Size        int64
	CreatedAt   time.Time

	URL string // Signed on read, never stored
}
