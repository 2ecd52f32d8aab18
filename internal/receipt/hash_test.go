package receipt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Madofly35/GestLoc/internal/receipt"
)

func TestHasher(t *testing.T) {
	h := receipt.NewHasher("s3cret")
	paymentID, leaseID := uuid.New(), uuid.New()
	day := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	sum := h.Sum(paymentID, leaseID, day)

	assert.Len(t, sum, receipt.HashLen)
	assert.Equal(t, sum, h.Sum(paymentID, leaseID, day.Add(15*time.Hour)), "time of day is ignored")
	assert.NotEqual(t, sum, h.Sum(paymentID, leaseID, day.AddDate(0, 0, 1)))
	assert.NotEqual(t, sum, h.Sum(leaseID, paymentID, day))
	assert.NotEqual(t, sum, receipt.NewHasher("other").Sum(paymentID, leaseID, day))
	assert.NotContains(t, sum, "s3cret")

	assert.True(t, h.Verify(sum, paymentID, leaseID, day))
	assert.False(t, h.Verify(sum, uuid.New(), leaseID, day))
	assert.False(t, h.Verify("not-hex", paymentID, leaseID, day))
}
