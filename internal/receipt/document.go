package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/Madofly35/GestLoc/internal/money"
	"github.com/Madofly35/GestLoc/internal/payment"
)

// Owner identifies the landlord issuing receipts.
type Owner struct {
	Name       string
	Company    string
	Address    string
	PostalCode string
	City       string
	SIRET      string
}

// Document holds everything printed on a receipt.
type Document struct {
	Owner Owner

	TenantName   string
	PropertyName string
	RoomNumber   string
	Address      string
	PostalCode   string
	City         string

	Rent    money.Cents
	Charges money.Cents
	Total   money.Cents

	Period   time.Time // Any day of the billed month
	IssuedAt time.Time

	Hash      string
	VerifyURL string
	QR        []byte // PNG
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// PeriodLabel renders the billed month, e.g. "mars 2024".
func (d Document) PeriodLabel() string {
	return fmt.Sprintf("%s %d", frenchMonths[d.Period.Month()-1], d.Period.Year())
}

// ShortHash is the prefix of the hash printed under the QR code.
func (d Document) ShortHash() string {
	if len(d.Hash) < 8 {
		return d.Hash
	}

	return d.Hash[:8]
}

// VerifyLink builds the public verification URL of hash.
func VerifyLink(base, hash string) string {
	return strings.TrimRight(base, "/") + "/verify/" + hash
}

func newDocument(owner Owner, p *payment.Payment, hash, verifyURL string, issuedAt time.Time) Document {
	l := p.Lease
	prop := l.Room.Property

	return Document{
		Owner:        owner,
		TenantName:   l.Tenant.FullName(),
		PropertyName: prop.Name,
		RoomNumber:   l.Room.Number,
		Address:      prop.Address,
		PostalCode:   prop.PostalCode,
		City:         prop.City,
		Rent:         p.Rent,
		Charges:      p.Charges,
		Total:        p.Amount,
		Period:       p.DueDate,
		IssuedAt:     issuedAt,
		Hash:         hash,
		VerifyURL:    VerifyLink(verifyURL, hash),
	}
}
