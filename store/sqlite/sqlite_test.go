package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func readCells(t *testing.T, table generic.Table) [][]any {
	t.Helper()
	rows, err := table.ReadAll(context.Background())
	require.NoError(t, err)
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out
}

// =============================================================================
// TABLE CONTRACT
// =============================================================================

func TestTable_AppendStartsBelowHeader(t *testing.T) {
	ctx := context.Background()
	table := newTestStore(t).Table("roster")

	require.NoError(t, table.Append(ctx, []any{"4D001", "Tan"}))
	require.NoError(t, table.Append(ctx, []any{"4D002", "Irfan"}))

	rows, err := table.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 3, rows[1].Number)
	assert.Equal(t, "Irfan", rows[1].Cell(2))
}

func TestTable_UpdateCellPadsRow(t *testing.T) {
	ctx := context.Background()
	table := newTestStore(t).Table("roster")
	require.NoError(t, table.Append(ctx, []any{"4D001"}))

	require.NoError(t, table.UpdateCell(ctx, 2, 4, 11))

	// JSON numbers come back as float64
	assert.Equal(t, [][]any{{"4D001", nil, nil, 11.0}}, readCells(t, table))
}

func TestTable_DeleteRowShiftsLaterRows(t *testing.T) {
	// GIVEN: Four rows
	ctx := context.Background()
	table := newTestStore(t).Table("status")
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, table.Append(ctx, []any{id}))
	}

	// WHEN: Deleting rows 5 then 3, bottom-up
	require.NoError(t, table.DeleteRow(ctx, 5))
	require.NoError(t, table.DeleteRow(ctx, 3))

	// THEN: Remaining rows are contiguous again
	rows, err := table.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Cell(1))
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "c", rows[1].Cell(1))
	assert.Equal(t, 3, rows[1].Number)

	// AND: The next append lands after them
	require.NoError(t, table.Append(ctx, []any{"e"}))
	assert.Equal(t, [][]any{{"a"}, {"c"}, {"e"}}, readCells(t, table))
}

func TestTable_MissingRowIsStoreError(t *testing.T) {
	ctx := context.Background()
	table := newTestStore(t).Table("status")

	err := table.DeleteRow(ctx, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generic.ErrStoreOperation))

	err = table.UpdateCell(ctx, 9, 1, "x")
	assert.True(t, errors.Is(err, generic.ErrStoreOperation))
}

func TestTable_SheetsAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	roster, status := store.Table("roster"), store.Table("status")

	require.NoError(t, roster.Append(ctx, []any{"r"}))
	require.NoError(t, status.Append(ctx, []any{"s"}))
	require.NoError(t, status.DeleteRow(ctx, 2))

	assert.Equal(t, [][]any{{"r"}}, readCells(t, roster))
	assert.Empty(t, readCells(t, status))
}

func TestStore_ResetAndReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "parade.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.Table("roster").Append(ctx, []any{"4D001"}))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, [][]any{{"4D001"}}, readCells(t, reopened.Table("roster")))

	require.NoError(t, reopened.Reset(ctx))
	assert.Empty(t, readCells(t, reopened.Table("roster")))
}
