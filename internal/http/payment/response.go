package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/Madofly35/GestLoc/internal/http/httpx"
	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
)

type paymentResponse struct {
	ID           uuid.UUID       `json:"id"`
	LeaseID      uuid.UUID       `json:"lease_id"`
	DueDate      httpx.Date      `json:"due_date"`
	Rent         money.Cents     `json:"rent"`
	Charges      money.Cents     `json:"charges"`
	Amount       money.Cents     `json:"amount"`
	Status       payment.Status  `json:"status"`
	PaymentDate  *httpx.Date     `json:"payment_date"`
	TenantName   string          `json:"tenant_name,omitempty"`
	PropertyName string          `json:"property_name,omitempty"`
	RoomNumber   string          `json:"room_number,omitempty"`
	HasReceipt   bool            `json:"has_receipt"`
	Receipt      *receiptSummary `json:"receipt,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type receiptSummary struct {
	ID               uuid.UUID  `json:"id"`
	VerificationHash string     `json:"verification_hash"`
	Signed           bool       `json:"signed"`
	GeneratedAt      time.Time  `json:"generated_at"`
	DownloadedAt     *time.Time `json:"downloaded_at,omitempty"`
	DownloadURL      string     `json:"download_url"`
}

func toResponse(p *payment.Payment) paymentResponse {
	resp := paymentResponse{
		ID:          p.ID,
		LeaseID:     p.LeaseID,
		DueDate:     httpx.Date{Time: p.DueDate},
		Rent:        p.Rent,
		Charges:     p.Charges,
		Amount:      p.Amount,
		Status:      p.Status,
		PaymentDate: httpx.DatePtr(p.PaymentDate),
		HasReceipt:  p.HasReceipt(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}

	if l := p.Lease; l != nil {
		if l.Tenant != nil {
			resp.TenantName = l.Tenant.FullName()
		}

		if l.Room != nil {
			resp.RoomNumber = l.Room.Number

			if l.Room.Property != nil {
				resp.PropertyName = l.Room.Property.Name
			}
		}
	}

	if p.HasReceipt() {
		resp.Receipt = &receiptSummary{
			ID:               p.Receipt.ID,
			VerificationHash: p.Receipt.VerificationHash,
			Signed:           p.Receipt.Signed,
			GeneratedAt:      p.Receipt.GeneratedAt,
			DownloadedAt:     p.Receipt.DownloadedAt,
			DownloadURL:      "/api/v1/receipts/" + p.ID.String() + "/download",
		}
	}

	return resp
}

func toResponseList(payments []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = toResponse(p)
	}

	return resp
}

type markPaidResponse struct {
	paymentResponse
	ReceiptError string `json:"receipt_error,omitempty"`
}

func toMarkPaidResponse(res *payment.MarkPaidResult) markPaidResponse {
	resp := markPaidResponse{paymentResponse: toResponse(res.Payment)}

	if res.ReceiptErr != nil {
		resp.ReceiptError = res.ReceiptErr.Error()
	}

	return resp
}

type statisticsResponse struct {
	ExpectedAmount money.Cents `json:"expected_amount"`
	ReceivedAmount money.Cents `json:"received_amount"`
	PendingAmount  money.Cents `json:"pending_amount"`
	LatePayments   int         `json:"late_payments"`
}

type periodResponse struct {
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	Payments   []paymentResponse  `json:"payments"`
	Statistics statisticsResponse `json:"statistics"`
}

func toPeriodResponse(p *payment.Period) periodResponse {
	return periodResponse{
		Month:    p.Month,
		Year:     p.Year,
		Payments: toResponseList(p.Payments),
		Statistics: statisticsResponse{
			ExpectedAmount: p.Statistics.ExpectedAmount,
			ReceivedAmount: p.Statistics.ReceivedAmount,
			PendingAmount:  p.Statistics.PendingAmount,
			LatePayments:   p.Statistics.LatePayments,
		},
	}
}
