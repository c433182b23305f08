package generic

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date in the DDMMYYYY wire format
// =============================================================================

// DateLayout is the only date format the system reads or writes.
const DateLayout = "02012006"

// Date is a calendar day. The zero value means "no date".
type Date struct {
	Time time.Time
}

// NewDate builds a date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in loc (UTC when nil).
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// ParseDate strictly parses an 8-digit DDMMYYYY string. Impossible calendar
// dates such as 30022025 are rejected.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) != 8 {
		return Date{}, &MalformedDateError{Value: s, Reason: "want 8 digits"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Date{}, &MalformedDateError{Value: s, Reason: "non-digit character"}
		}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &MalformedDateError{Value: s, Reason: err.Error()}
	}
	return Date{Time: t}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(fmt.Sprintf("generic: %v", err))
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

func (d Date) IsZero() bool { return d.Time.IsZero() }

// String renders the date in DDMMYYYY form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// DaysBetween returns to - from in whole days. Negative when to is earlier.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}
