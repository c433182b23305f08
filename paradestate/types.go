// Package paradestate implements the parade-state domain: who is away on a
// given day and why, and the leave-balance rules applied when a new status
// is submitted.
package paradestate

import (
	"strings"

	"github.com/warp/parade-state/generic"
)

// =============================================================================
// PERSON - One roster row
// =============================================================================

// PersonID is a canonical identifier: IDPrefix followed by digits.
type PersonID string

func (id PersonID) String() string { return string(id) }

// DefaultLeaveBalance applies when the roster has no usable balance.
const DefaultLeaveBalance = 14

// Person is a member of the roster.
type Person struct {
	ID           PersonID
	Name         string
	Group        string // display label; compare via NormalizeGroupLabel
	LeaveBalance int
	LeaveLedger  string // comma-joined date or range tokens, append-only
	Row          int    // storage row, 0 when not persisted
}

// =============================================================================
// STATUS ENTRY - A time-ranged absence
// =============================================================================

// Status kinds with a defined priority. Any other text is allowed.
const (
	KindLeave = "leave"
	KindFever = "fever"
	KindMC    = "mc"
)

// StatusEntry is one row of the status table.
type StatusEntry struct {
	Group     string
	ID        PersonID
	Kind      string
	Start     string // DDMMYYYY
	End       string // DDMMYYYY, inclusive
	Submitter string
	Row       int // storage back-reference
}

// Range parses the entry's dates strictly.
func (s StatusEntry) Range() (generic.Range, error) {
	return generic.NewRange(s.Start, s.End)
}

// KindPriority ranks kinds for conflict resolution; lower wins.
func KindPriority(kind string) int {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLeave:
		return 0
	case KindFever:
		return 1
	case KindMC:
		return 2
	default:
		return 3
	}
}

// IsLeave reports whether kind is leave, case-insensitively.
func IsLeave(kind string) bool {
	return strings.EqualFold(strings.TrimSpace(kind), KindLeave)
}
