package httpx

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar day encoded as YYYY-MM-DD. Decoding also accepts RFC 3339 timestamps.
type Date struct {
	time.Time
}

func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}

	return &Date{*t}
}

func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}

	return &d.Time
}

func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	return t, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}

	d.Time = t

	return nil
}
