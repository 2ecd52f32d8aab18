package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSummarize(t *testing.T) {
	today := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	payments := []*payment.Payment{
		{Amount: 70000, Status: payment.StatusPaid, DueDate: date(2024, 3, 1), PaymentDate: new(date(2024, 3, 2))},
		{Amount: 55000, Status: payment.StatusPending, DueDate: date(2024, 3, 5)},
		{Amount: 60000, Status: payment.StatusPending, DueDate: date(2024, 3, 10)},
		{Amount: 45000, Status: payment.StatusPending, DueDate: date(2024, 3, 25)},
	}

	got := payment.Summarize(payments, today)

	assert.Equal(t, payment.Statistics{
		ExpectedAmount: money.Cents(230000),
		ReceivedAmount: money.Cents(70000),
		PendingAmount:  money.Cents(160000),
		LatePayments:   1,
	}, got)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, payment.Statistics{}, payment.Summarize(nil, time.Now()))
}

func TestPayment_HasReceipt(t *testing.T) {
	p := &payment.Payment{Status: payment.StatusPaid}
	assert.False(t, p.HasReceipt())

	p.Receipt = &payment.Receipt{StoragePath: "tenant_1/2024/03/receipt_1.pdf"}
	assert.True(t, p.HasReceipt())

	p.Receipt.RevokedAt = new(time.Now())
	assert.False(t, p.HasReceipt())
}
