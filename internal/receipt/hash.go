package receipt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// HashLen is the length of a hex encoded verification hash.
const HashLen = sha256.Size * 2

// Hasher derives the public verification identifier of a receipt. The same
// payment, lease and payment date always yield the same hash.
type Hasher struct {
	secret []byte
}

func NewHasher(secret string) *Hasher {
	return &Hasher{secret: []byte(secret)}
}

func (h *Hasher) Sum(paymentID, leaseID uuid.UUID, paidOn time.Time) string {
	return hex.EncodeToString(h.mac(paymentID, leaseID, paidOn))
}

// Verify recomputes the hash and compares it in constant time.
func (h *Hasher) Verify(hash string, paymentID, leaseID uuid.UUID, paidOn time.Time) bool {
	got, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}

	return hmac.Equal(got, h.mac(paymentID, leaseID, paidOn))
}

func (h *Hasher) mac(paymentID, leaseID uuid.UUID, paidOn time.Time) []byte {
	m := hmac.New(sha256.New, h.secret)
	m.Write([]byte(paymentID.String() + "|" + leaseID.String() + "|" + paidOn.Format(time.DateOnly)))

	return m.Sum(nil)
}
