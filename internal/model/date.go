package model

import (
	"fmt"
	"time"
)

// DateLayout is the textual form of a Date (ISO 8601 calendar date).
const DateLayout = "2006-01-02"

const (
	minDateYear = 1
	maxDateYear = 9999
)

// Date is a calendar date without time of day.
//
// The zero value is an unset date.
type Date struct {
	t time.Time
}

// NewDate returns the date for the given year, month and day. Values out of range
// are normalized the same way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as seen in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, ErrNotValid)
	}
	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// InRange reports whether the date year fits the four digits of DateLayout.
func (d Date) InRange() bool {
	y := d.t.Year()
	return y >= minDateYear && y <= maxDateYear
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1 depending on d being before, equal or after o.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func validateDate(field string, d Date) error {
	if d.IsZero() {
		return fmt.Errorf("%s is required: %w", field, ErrNotValid)
	}
	if !d.InRange() {
		return fmt.Errorf("%s %s is out of range: %w", field, d.t.Format(DateLayout), ErrNotValid)
	}
	return nil
}

func validateOptionalDate(field string, d *Date) error {
	if d == nil || d.IsZero() {
		return nil
	}
	return validateDate(field, *d)
}
