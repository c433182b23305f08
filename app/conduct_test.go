package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/conduct"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/generic/store"
	"github.com/warp/parade-state/paradestate"
)

func TestConductRoster_StartsFromRosterView(t *testing.T) {
	f := newFixture(t, existingStatuses()...)

	rows, err := f.svc.ConductRoster(context.Background(), conduct.Draft{Date: "1012025", Group: "Platoon 1", Name: "IPPT Run"})

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Away)

	_, err = f.svc.ConductRoster(context.Background(), conduct.Draft{Date: "01012025", Name: "IPPT Run"})
	assert.True(t, errors.Is(err, generic.ErrMissingRequiredField))
}

func TestFinalizeConduct_RecordsAndAddsNewPeople(t *testing.T) {
	// GIVEN: The roster view plus a walk-in not on the roster
	f := newFixture(t)
	draft := conduct.Draft{Date: "01012025", Group: "Platoon 1", Name: "IPPT Run", Submitter: "Sgt Lee"}
	rows := []paradestate.RosterRow{
		{ID: "4D001", Name: "Tan Wei Ming", Away: true, Status: "MC"},
		{ID: "4D002", Name: "Muhammad Irfan"},
		{ID: "4D003", Name: "Lim Jun Hao", Away: true},
		{ID: "077", Name: "Walk In"},
	}

	// WHEN: Finalizing
	result, err := f.svc.FinalizeConduct(context.Background(), draft, rows)

	// THEN: Walk-in joins the roster, conduct row is written
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, paradestate.PersonID("4D077"), result.Created[0].ID)
	assert.Equal(t, 4, result.Record.Total)
	assert.Equal(t, 2, result.Record.Participating)

	roster := cells(t, f.tables.Roster)
	assert.Equal(t, []any{"4D077", "Walk In", "Platoon 1", 14, ""}, roster[len(roster)-1])
	assert.Equal(t, [][]any{{
		"01012025", "Platoon 1", "IPPT Run", 4, 2, "4D001(MC),4D003(Absent)", "", "Sgt Lee",
	}}, cells(t, f.tables.Conduct))
}

func TestFinalizeConduct_RosterFailureStillRecordsConduct(t *testing.T) {
	roster := &flakyTable{Table: store.NewMemory(app.SheetRoster, rosterRows()...), failAppend: true}
	f := newFixtureWith(t, app.Tables{
		Roster:  roster,
		Status:  store.NewMemory(app.SheetStatus),
		Conduct: store.NewMemory(app.SheetConduct),
	})

	result, err := f.svc.FinalizeConduct(context.Background(),
		conduct.Draft{Date: "01012025", Group: "Platoon 1", Name: "Swim"},
		[]paradestate.RosterRow{{ID: "4D001"}, {ID: "4D500", Name: "New"}, {ID: "bad"}})

	require.NoError(t, err)
	assert.Empty(t, result.Created)
	require.Len(t, result.Failed, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "None", result.Record.Outliers)
	assert.Len(t, cells(t, f.tables.Conduct), 1)
}

func conductHistory() [][]any {
	return [][]any{
		{"01012025", "Platoon 1", "IPPT Run", 3, 2, "4D001(MC)", "", "Sgt Lee"},
		{"08012025", "Platoon 1", "IPPT Run", 3, 1, "4D001(MC),4D002(Leave)", "", "Sgt Lee"},
		{"09012025", "Platoon 1", "Route March", 3, 2, "4D003(Absent)", "", "Sgt Lee"},
		{"10012025", "Platoon 2", "IPPT Run", 1, 0, "4D101(Course)", "", "Sgt Lee"},
	}
}

func TestOutliers_TalliesMatchingConduct(t *testing.T) {
	f := newFixtureWith(t, app.Tables{
		Roster:  store.NewMemory(app.SheetRoster, rosterRows()...),
		Status:  store.NewMemory(app.SheetStatus),
		Conduct: store.NewMemory(app.SheetConduct, conductHistory()...),
	})

	report, err := f.svc.Outliers(context.Background(), "PLATOON 1", "ippt run")

	require.NoError(t, err)
	assert.True(t, report.Match.Found)
	assert.Equal(t, 2, report.Match.Sessions)
	assert.Equal(t, []conduct.Tally{
		{Token: "4D001(MC)", Count: 2},
		{Token: "4D002(Leave)", Count: 1},
	}, report.Tallies)
}

func TestOutliers_NoMatchIsEmpty(t *testing.T) {
	f := newFixtureWith(t, app.Tables{
		Roster:  store.NewMemory(app.SheetRoster),
		Status:  store.NewMemory(app.SheetStatus),
		Conduct: store.NewMemory(app.SheetConduct, conductHistory()...),
	})

	report, err := f.svc.Outliers(context.Background(), "HQ", "Zumba")

	require.NoError(t, err)
	assert.False(t, report.Match.Found)
	assert.Empty(t, report.Tallies)

	_, err = f.svc.Outliers(context.Background(), "", "Zumba")
	assert.True(t, errors.Is(err, generic.ErrMissingRequiredField))
}

func TestConducts_FilterByGroup(t *testing.T) {
	f := newFixtureWith(t, app.Tables{
		Roster:  store.NewMemory(app.SheetRoster),
		Status:  store.NewMemory(app.SheetStatus),
		Conduct: store.NewMemory(app.SheetConduct, conductHistory()...),
	})

	all, err := f.svc.Conducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	p2, err := f.svc.Conducts(context.Background(), "platoon 2")
	require.NoError(t, err)
	require.Len(t, p2, 1)
	assert.Equal(t, 5, p2[0].Row)
}
