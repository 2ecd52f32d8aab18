package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/document"
)

type documentResponse struct {
	ID        uuid.UUID     `json:"id"`
	TenantID  uuid.UUID     `json:"tenant_id"`
	Type      document.Type `json:"type"`
	Name      string        `json:"name"`
	MimeType  string        `json:"mime_type"`
	Size      int64         `json:"size"`
	URL       string        `json:"url"`
	CreatedAt time.Time     `json:"created_at"`
}

func toResponse(d *document.Document) documentResponse {
	return documentResponse{
		ID:        d.ID,
		TenantID:  d.TenantID,
		Type:      d.Type,
		Name:      d.Name,
		MimeType:  d.MimeType,
		Size:      d.Size,
		URL:       d.URL,
		CreatedAt: d.CreatedAt,
	}
}

func toResponseList(docs []*document.Document) []documentResponse {
	resp := make([]documentResponse, len(docs))
	for i, d := range docs {
		resp[i] = toResponse(d)
	}

	return resp
}
