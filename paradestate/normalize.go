package paradestate

import (
	"strings"
	"unicode"

	"github.com/warp/parade-state/generic"
)

// IDPrefix is prepended to bare numeric identifiers.
const IDPrefix = "4D"

// NormalizeIdentifier uppercases and trims raw, prepends IDPrefix when it is
// missing, and accepts only IDPrefix followed by one or more digits.
func NormalizeIdentifier(raw any) (PersonID, error) {
	s := strings.ToUpper(generic.CellString(raw))
	if s == "" {
		return "", &generic.MalformedIdentifierError{Value: s}
	}
	if !strings.HasPrefix(s, IDPrefix) {
		s = IDPrefix + s
	}
	if !isDigits(s[len(IDPrefix):]) {
		return "", &generic.MalformedIdentifierError{Value: generic.CellString(raw)}
	}
	return PersonID(s), nil
}

// NormalizeDate coerces an int, float or string cell into an 8-digit string.
// Floats are truncated, strings lose every non-digit, and the result is
// zero-padded on the left. Anything that does not fit in 8 digits, or has no
// digits at all, yields "".
//
// Calendar validity is not checked here; see generic.ParseDate.
func NormalizeDate(raw any) string {
	var s string
	switch x := raw.(type) {
	case float64:
		s = generic.CellString(float64(int64(x)))
	case float32:
		s = generic.CellString(float64(int64(x)))
	default:
		s = generic.CellString(raw)
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" || len(digits) > 8 {
		return ""
	}
	return strings.Repeat("0", 8-len(digits)) + digits
}

// NormalizeGroupLabel returns the comparison key for a group label:
// uppercase with every non-alphanumeric removed. Never shown to users.
func NormalizeGroupLabel(raw any) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return -1
	}, generic.CellString(raw))
}

// DisplayLabel is the trimmed label used for display.
func DisplayLabel(raw any) string {
	return generic.CellString(raw)
}

// SameGroup compares two labels by their normalized keys.
func SameGroup(a, b string) bool {
	return NormalizeGroupLabel(a) == NormalizeGroupLabel(b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
