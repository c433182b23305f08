package factory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/factory"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/paradestate"
)

func TestPeople_DecodesAndDropsMalformed(t *testing.T) {
	// GIVEN: Roster rows with a float id, a blank balance and a bad id
	f := factory.NewRowFactory(14)
	rows := []generic.Row{
		{Number: 2, Cells: []any{"4d001", " Tan ", "Platoon 1", 12.0, "01012025"}},
		{Number: 3, Cells: []any{2.0, "Irfan", "Platoon 1", ""}},
		{Number: 4, Cells: []any{"??", "Nobody", "Platoon 1", 14}},
	}

	// WHEN: Decoding
	people, issues := f.People(rows)

	// THEN: Two people, one issue naming the row
	require.Len(t, people, 2)
	assert.Equal(t, paradestate.Person{
		ID: "4D001", Name: "Tan", Group: "Platoon 1", LeaveBalance: 12, LeaveLedger: "01012025", Row: 2,
	}, people[0])
	assert.Equal(t, paradestate.PersonID("4D2"), people[1].ID)
	assert.Equal(t, 14, people[1].LeaveBalance, "blank balance falls back to the default")

	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Row)
	assert.Equal(t, "roster", issues[0].Table)
	assert.True(t, errors.Is(issues[0], generic.ErrMalformedIdentifier))
}

func TestStatuses_NormalizesDates(t *testing.T) {
	f := factory.NewRowFactory(14)
	rows := []generic.Row{
		{Number: 2, Cells: []any{"Platoon 1", "4D001", "MC", 5012025.0, "06/01/2025", "Sgt"}},
		{Number: 3, Cells: []any{"Platoon 1", "", "MC", "05012025", "06012025"}},
	}

	entries, issues := f.Statuses(rows)

	require.Len(t, entries, 1)
	assert.Equal(t, paradestate.StatusEntry{
		Group: "Platoon 1", ID: "4D001", Kind: "MC", Start: "05012025", End: "06012025", Submitter: "Sgt", Row: 2,
	}, entries[0])
	require.Len(t, issues, 1)
	assert.Equal(t, 3, issues[0].Row)
}

func TestConducts_RequireDate(t *testing.T) {
	f := factory.NewRowFactory(14)
	rows := []generic.Row{
		{Number: 2, Cells: []any{"15012025", "Platoon 1", "IPPT Run", 4, 3.0, "4D001(MC)", "", "Sgt"}},
		{Number: 3, Cells: []any{"", "Platoon 1", "IPPT Run", 4, 4}},
	}

	records, issues := f.Conducts(rows)

	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Total)
	assert.Equal(t, 3, records[0].Participating)
	assert.Equal(t, []string{"4D001(MC)"}, records[0].OutlierTokens())
	require.Len(t, issues, 1)
	assert.True(t, errors.Is(issues[0], generic.ErrMissingRequiredField))
}

func TestCells_RoundTripThroughRows(t *testing.T) {
	f := factory.NewRowFactory(14)

	person := paradestate.Person{ID: "4D001", Name: "Tan", Group: "Platoon 1", LeaveBalance: 9, LeaveLedger: "01012025"}
	gotPerson, err := f.Person(generic.Row{Number: 5, Cells: f.PersonCells(person)})
	require.NoError(t, err)
	person.Row = 5
	assert.Equal(t, person, gotPerson)

	rec := conduct.Record{Date: "15012025", Group: "Platoon 1", Name: "IPPT Run", Total: 4, Participating: 4, Outliers: conduct.NoOutliers}
	gotRec, err := f.Conduct(generic.Row{Number: 2, Cells: f.ConductCells(rec)})
	require.NoError(t, err)
	rec.Row = 2
	assert.Equal(t, rec, gotRec)

	assert.Len(t, f.StatusCells(paradestate.StatusEntry{}), len(factory.StatusHeader))
	assert.Len(t, f.PersonCells(person), len(factory.RosterHeader))
	assert.Len(t, f.ConductCells(rec), len(factory.ConductHeader))
}
