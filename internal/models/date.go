package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date wire format.
const DateLayout = "2006-01-02"

const localDateTimeLayout = "2006-01-02T15:04:05"

// minYear rejects dates that would collide with the zero value or are obvious typos.
const minYear = 1900

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar date without time-of-day or zone. The zero value means "not set".
// Internally it is held as UTC midnight so arithmetic never crosses a DST boundary.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf takes the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp. For timestamps the literal date part
// is kept and the offset ignored, so "2025-06-01T23:00:00-05:00" is 2025-06-01.
// An empty string yields the zero Date and no error.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, nil
	}
	if len(raw) > len(DateLayout) {
		if !isTimestamp(raw) {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		raw = raw[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil || t.Year() < minYear {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Date{t: t}, nil
}

// isTimestamp accepts RFC3339 and zone-less local date-times.
func isTimestamp(raw string) bool {
	for _, layout := range []string{time.RFC3339, localDateTimeLayout} {
		if _, err := time.Parse(layout, raw); err == nil {
			return true
		}
	}
	return false
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(raw string) Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) After(o Date) bool { return d.t.After(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysUntil returns the signed number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
