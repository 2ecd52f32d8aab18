package money

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents is a monetary amount in euro cents.
type Cents int64

var hundred = decimal.NewFromInt(100)

func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Parse reads a decimal euro amount such as "650", "650.5" or "650,50".
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(normalize(s))
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}

	return FromDecimal(d), nil
}

func normalize(s string) string {
	out := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ',':
			out = append(out, '.')
		case ' ':
		default:
			out = append(out, c)
		}
	}

	return string(out)
}

func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// Format renders the amount with the grouping and decimal marks of tag, e.g. "1 234,50 €" for French.
func (c Cents) Format(tag language.Tag) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%.2f €", c.Decimal().InexactFloat64())
}

// MarshalJSON encodes the amount as a JSON number with two decimals.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted amounts in any form Parse reads.
func (c *Cents) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decoding amount: %w", err)
		}

		v, err := Parse(s)
		if err != nil {
			return fmt.Errorf("decoding amount: %w", err)
		}

		*c = v

		return nil
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("decoding amount: %w", err)
	}

	*c = FromDecimal(d)

	return nil
}
