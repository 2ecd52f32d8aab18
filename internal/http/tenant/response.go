package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
	"github.com/Madofly35/GestLoc/internal/tenant"
)

type tenantResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateOfBirth httpx.Date `json:"date_of_birth"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toResponse(t *tenant.Tenant) tenantResponse {
	return tenantResponse{
		ID:          t.ID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		DateOfBirth: httpx.Date{Time: t.DateOfBirth},
		Email:       t.Email,
		Phone:       t.Phone,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toResponseList(tenants []*tenant.Tenant) []tenantResponse {
	resp := make([]tenantResponse, len(tenants))
	for i, t := range tenants {
		resp[i] = toResponse(t)
	}

	return resp
}

type receiptResponse struct {
	PaymentID    uuid.UUID   `json:"payment_id"`
	LeaseID      uuid.UUID   `json:"lease_id"`
	DueDate      httpx.Date  `json:"due_date"`
	PaymentDate  *httpx.Date `json:"payment_date"`
	Amount       money.Cents `json:"amount"`
	PropertyName string      `json:"property_name,omitempty"`
	RoomNumber   string      `json:"room_number,omitempty"`
	HasReceipt   bool        `json:"has_receipt"`
	GeneratedAt  *time.Time  `json:"generated_at,omitempty"`
	DownloadedAt *time.Time  `json:"downloaded_at,omitempty"`
	Signed       bool        `json:"signed"`
}

func toReceiptResponse(p *payment.Payment) receiptResponse {
	resp := receiptResponse{
		PaymentID:   p.ID,
		LeaseID:     p.LeaseID,
		DueDate:     httpx.Date{Time: p.DueDate},
		PaymentDate: httpx.DatePtr(p.PaymentDate),
		Amount:      p.Amount,
		HasReceipt:  p.HasReceipt(),
	}

	if p.Lease != nil && p.Lease.Room != nil {
		resp.RoomNumber = p.Lease.Room.Number

		if p.Lease.Room.Property != nil {
			resp.PropertyName = p.Lease.Room.Property.Name
		}
	}

	if p.HasReceipt() {
		resp.GeneratedAt = &p.Receipt.GeneratedAt
		resp.DownloadedAt = p.Receipt.DownloadedAt
		resp.Signed = p.Receipt.Signed
	}

	return resp
}

func toReceiptResponseList(payments []*payment.Payment) []receiptResponse {
	resp := make([]receiptResponse, len(payments))
	for i, p := range payments {
		resp[i] = toReceiptResponse(p)
	}

	return resp
}
