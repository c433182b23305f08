package paradestate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

func newLedger() *paradestate.LeaveLedger {
	return paradestate.NewLeaveLedger(nil, 14)
}

func rng(t *testing.T, start, end string) generic.Range {
	t.Helper()
	r, err := generic.NewRange(start, end)
	require.NoError(t, err)
	return r
}

// =============================================================================
// DAYS USED
// =============================================================================

func TestDaysUsed(t *testing.T) {
	l := newLedger()

	assert.Equal(t, 3, l.DaysUsed("05052025-07052025"))
	assert.Equal(t, 1, l.DaysUsed("05052025"))
	assert.Equal(t, 0, l.DaysUsed("07052025-05052025"), "reversed range counts nothing")
	assert.Equal(t, 0, l.DaysUsed("badtoken"))
	assert.Equal(t, 0, l.DaysUsed(""))
	assert.Equal(t, 5, l.DaysUsed("05052025-07052025, 10052025 ,badtoken,11052025"))
}

// =============================================================================
// OVERLAP
// =============================================================================

func TestDetectOverlap(t *testing.T) {
	l := newLedger()
	existing := []paradestate.StatusEntry{
		{ID: "4D001", Kind: "Leave", Start: "01012025", End: "05012025", Row: 2},
	}

	assert.True(t, l.DetectOverlap("4D001", rng(t, "03012025", "10012025"), existing, 0))
	assert.False(t, l.DetectOverlap("4D001", rng(t, "06012025", "10012025"), existing, 0))
	assert.False(t, l.DetectOverlap("4D002", rng(t, "03012025", "10012025"), existing, 0), "other people never overlap")
	assert.False(t, l.DetectOverlap("4D001", rng(t, "03012025", "10012025"), existing, 2), "the row being edited is skipped")
}

func TestDetectOverlap_SkipsUnparseableEntries(t *testing.T) {
	l := newLedger()
	existing := []paradestate.StatusEntry{
		{ID: "4D001", Kind: "MC", Start: "", End: "05012025", Row: 2},
	}
	assert.False(t, l.DetectOverlap("4D001", rng(t, "01012025", "10012025"), existing, 0))
}

// =============================================================================
// AUTHORIZE
// =============================================================================

func TestAuthorize_Grants(t *testing.T) {
	// GIVEN: A person with 14 days and one earlier leave
	l := newLedger()
	person := &paradestate.Person{ID: "4D001", LeaveBalance: 14, LeaveLedger: "01012025"}

	// WHEN: Requesting 3 days
	grant, err := l.Authorize(paradestate.LeaveRequest{ID: "4D001", Start: "05052025", End: "07052025"}, person, nil)

	// THEN: Balance drops by 3 and the token is appended
	require.NoError(t, err)
	assert.Equal(t, 3, grant.Days)
	assert.Equal(t, 14, grant.PreviousBalance)
	assert.Equal(t, 11, grant.Balance)
	assert.Equal(t, "01012025,05052025-07052025", grant.Ledger)
	assert.Equal(t, 14, person.LeaveBalance, "authorize never mutates the person")
}

func TestAuthorize_InsufficientBalance_NoPartialDecrement(t *testing.T) {
	// GIVEN: A person with 3 days left
	l := newLedger()
	person := &paradestate.Person{ID: "4D001", LeaveBalance: 3}

	// WHEN: Requesting 5 days
	_, err := l.Authorize(paradestate.LeaveRequest{ID: "4D001", Start: "05052025", End: "09052025"}, person, nil)

	// THEN: Rejected and the balance is unchanged
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrInsufficientLeaveBalance))
	var balErr *generic.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, 3, balErr.Available)
	assert.Equal(t, 5, balErr.Requested)
	assert.Equal(t, 3, person.LeaveBalance)
	assert.Equal(t, "", person.LeaveLedger)
}

func TestAuthorize_Overlap(t *testing.T) {
	l := newLedger()
	person := &paradestate.Person{ID: "4D001", LeaveBalance: 14}
	statuses := []paradestate.StatusEntry{
		{ID: "4D001", Kind: "MC", Start: "01012025", End: "05012025", Row: 4},
	}

	_, err := l.Authorize(paradestate.LeaveRequest{ID: "4D001", Start: "03012025", End: "10012025"}, person, statuses)

	require.Error(t, err)
	var overlap *generic.OverlapError
	require.ErrorAs(t, err, &overlap)
	assert.Equal(t, 4, overlap.ExistingRow)
}

func TestAuthorize_UnknownPersonUsesDefaultBalance(t *testing.T) {
	l := paradestate.NewLeaveLedger(nil, 2)

	grant, err := l.Authorize(paradestate.LeaveRequest{ID: "4D999", Start: "05052025", End: "06052025"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, grant.Balance)

	_, err = l.Authorize(paradestate.LeaveRequest{ID: "4D999", Start: "05052025", End: "07052025"}, nil, nil)
	assert.True(t, errors.Is(err, generic.ErrInsufficientLeaveBalance))
}

func TestAuthorize_ReversedRange(t *testing.T) {
	l := newLedger()
	_, err := l.Authorize(paradestate.LeaveRequest{ID: "4D001", Start: "07052025", End: "05052025"}, nil, nil)
	assert.True(t, errors.Is(err, generic.ErrMalformedDate))
}

func TestAppendLedgerToken(t *testing.T) {
	assert.Equal(t, "05052025", paradestate.AppendLedgerToken("", "05052025"))
	assert.Equal(t, "01012025,05052025", paradestate.AppendLedgerToken(" 01012025 ", "05052025"))
}
