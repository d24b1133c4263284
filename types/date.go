package types

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the calendar date wire format used throughout the
// member roster and distribution log.
const DateLayout = "2006-01-02"

// Date is a civil calendar date with no time-of-day or zone component.
// Join dates, distribution dates and the genesis date are all civil
// dates: a member who joins at 23:59 in any timezone joined that day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("date: parse %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error. Use for
// hardcoded dates such as the protocol genesis.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a time.Time to its civil date in the time's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the current civil date in UTC. Distribution runs are
// anchored to 00:00 UTC, so UTC is the protocol's calendar.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Equal reports whether two dates are the same day.
func (d Date) Equal(other Date) bool {
	return d == other
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil returns the number of whole days from d to other.
// Negative when other is earlier than d.
func (d Date) DaysUntil(other Date) int64 {
	return int64(other.Time().Sub(d.Time()) / (24 * time.Hour))
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(string(data))
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

// Value implements driver.Valuer for database storage. Dates store as
// their YYYY-MM-DD text form, matching the original roster schema.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (d *Date) Scan(src any) error {
	if src == nil {
		*d = Date{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = DateOf(v)
		return nil
	default:
		return fmt.Errorf("date: cannot scan %T", src)
	}
}
