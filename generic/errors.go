/*
errors.go - Centralized error types for the parade-state core

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Domain packages return these (or wrap them) so callers can classify
  failures with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Row validation - MalformedIdentifier, MalformedDate, MissingRequiredField,
     OverlappingStatus, InsufficientLeaveBalance. Caught per row, logged,
     reported to the user; the batch continues.
  2. Store errors   - StoreOperationFailure. Aborts the current row only.
  3. Query outcomes - NoMatchFound. Rendered as an empty result, never fatal.

SEE ALSO:
  - paradestate/ledger.go: Overlap and balance rejections
  - app/status_service.go: Per-row error handling in batch submissions
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMalformedIdentifier is returned when an identifier is not "4D" + digits.
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// ErrMalformedDate is returned when a date is not a valid DDMMYYYY day,
	// or a range is reversed or empty.
	ErrMalformedDate = errors.New("malformed date")

	// ErrOverlappingStatus is returned when a new status intersects an
	// existing one for the same person.
	ErrOverlappingStatus = errors.New("overlapping status")

	// ErrInsufficientLeaveBalance is returned when requested leave exceeds
	// the remaining balance.
	ErrInsufficientLeaveBalance = errors.New("insufficient leave balance")

	// ErrMissingRequiredField is returned when a submitted row lacks a field.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrStoreOperation is returned when a table read or write fails.
	ErrStoreOperation = errors.New("store operation failed")

	// ErrNoMatchFound is returned when an outlier query matches nothing.
	ErrNoMatchFound = errors.New("no match found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// MalformedDateError names the offending value.
type MalformedDateError struct {
	Value  string
	Reason string
}

func (e *MalformedDateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("malformed date %q", e.Value)
	}
	return fmt.Sprintf("malformed date %q: %s", e.Value, e.Reason)
}

func (e *MalformedDateError) Unwrap() error { return ErrMalformedDate }

// MalformedIdentifierError names the offending raw identifier.
type MalformedIdentifierError struct {
	Value string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed identifier %q", e.Value)
}

func (e *MalformedIdentifierError) Unwrap() error { return ErrMalformedIdentifier }

// OverlapError reports the existing entry a request collides with.
type OverlapError struct {
	ID          string
	Requested   Range
	Existing    Range
	ExistingRow int
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s: %s overlaps existing status %s (row %d)",
		e.ID, e.Requested, e.Existing, e.ExistingRow)
}

func (e *OverlapError) Unwrap() error { return ErrOverlappingStatus }

// InsufficientBalanceError provides details about a leave shortage.
type InsufficientBalanceError struct {
	ID        string
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient leave balance for %s: available %d, requested %d",
		e.ID, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientLeaveBalance }

// MissingFieldError names the absent field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingRequiredField }

// StoreError wraps a backend failure with the table and operation.
type StoreError struct {
	Table string
	Op    string
	Row   int
	Err   error
}

func (e *StoreError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("%s %s row %d: %v", e.Table, e.Op, e.Row, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Table, e.Op, e.Err)
}

// Is lets both ErrStoreOperation and the underlying cause match.
func (e *StoreError) Is(target error) bool { return target == ErrStoreOperation }

func (e *StoreError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRowError returns true for validation failures that skip a single row.
func IsRowError(err error) bool {
	return errors.Is(err, ErrMalformedIdentifier) ||
		errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrOverlappingStatus) ||
		errors.Is(err, ErrInsufficientLeaveBalance)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return IsRowError(err)
}

// IsNotFound returns true if the error indicates a missing match.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoMatchFound)
}
