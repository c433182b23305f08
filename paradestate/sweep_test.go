package paradestate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

func TestExpiredRows_StrictlyBeforeToday(t *testing.T) {
	// GIVEN: Entries ending yesterday, today, tomorrow and one unparseable
	today := generic.MustParseDate("10012025")
	statuses := []paradestate.StatusEntry{
		{ID: "4D001", Kind: "MC", Start: "01012025", End: "09012025", Row: 2},
		{ID: "4D002", Kind: "MC", Start: "01012025", End: "10012025", Row: 3},
		{ID: "4D003", Kind: "Leave", Start: "01012025", End: "11012025", Row: 4},
		{ID: "4D004", Kind: "Leave", Start: "01012025", End: "soon", Row: 5},
		{ID: "4D005", Kind: "Fever", Start: "01012025", End: "02012025", Row: 6},
	}

	// WHEN: Sweeping
	rows := newReconciler().ExpiredRows(statuses, today)

	// THEN: Only rows ending before today, highest first
	assert.Equal(t, []int{6, 2}, rows)
}

func TestExpiredRows_NothingExpired(t *testing.T) {
	today := generic.MustParseDate("10012025")
	statuses := []paradestate.StatusEntry{
		{ID: "4D002", Kind: "MC", Start: "10012025", End: "10012025", Row: 3},
	}
	assert.Empty(t, newReconciler().ExpiredRows(statuses, today))
}
