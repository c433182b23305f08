package generic

import "strings"

// =============================================================================
// RANGE - Inclusive span of calendar days
// =============================================================================

// Range is an inclusive [Start, End] span. A Range whose End precedes its Start
// is representable so callers can count it as zero days instead of failing.
type Range struct {
	Start Date
	End   Date
}

// SingleDay is the range covering exactly one date.
func SingleDay(d Date) Range {
	return Range{Start: d, End: d}
}

// NewRange parses a start/end pair and rejects reversed ranges.
func NewRange(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	r := Range{Start: s, End: e}
	if !r.Valid() {
		return Range{}, &MalformedDateError{Value: r.String(), Reason: "end before start"}
	}
	return r, nil
}

// ParseRangeToken parses a ledger token: either "DDMMYYYY" or
// "DDMMYYYY-DDMMYYYY". Reversed ranges are returned as-is.
func ParseRangeToken(token string) (Range, error) {
	token = strings.TrimSpace(token)
	start, end, isRange := strings.Cut(token, "-")
	if !isRange {
		d, err := ParseDate(token)
		if err != nil {
			return Range{}, err
		}
		return SingleDay(d), nil
	}
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: s, End: e}, nil
}

// Valid reports whether Start <= End.
func (r Range) Valid() bool {
	return r.Start.BeforeOrEqual(r.End)
}

// Contains returns true if d is within [Start, End].
func (r Range) Contains(d Date) bool {
	return d.AfterOrEqual(r.Start) && d.BeforeOrEqual(r.End)
}

// Overlaps is the inclusive interval intersection test.
func (r Range) Overlaps(other Range) bool {
	return r.Start.BeforeOrEqual(other.End) && r.End.AfterOrEqual(other.Start)
}

// Days is the inclusive day count, or 0 for a reversed range.
func (r Range) Days() int {
	n := DaysBetween(r.Start, r.End) + 1
	if n <= 0 {
		return 0
	}
	return n
}

// String renders the range as a ledger token.
func (r Range) String() string {
	if r.Start.Equal(r.End) {
		return r.Start.String()
	}
	return r.Start.String() + "-" + r.End.String()
}
