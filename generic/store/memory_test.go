package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/generic/store"
)

func cellsOf(rows []generic.Row) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out
}

func TestMemory_RowNumbersStartAfterHeader(t *testing.T) {
	m := store.NewMemory("roster", []any{"4D001"}, []any{"4D002"})

	rows, err := m.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 3, rows[1].Number)
}

func TestMemory_AppendUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory("status")

	// GIVEN: Three appended rows
	require.NoError(t, m.Append(ctx, []any{"a", 1}))
	require.NoError(t, m.Append(ctx, []any{"b", 2}))
	require.NoError(t, m.Append(ctx, []any{"c", 3}))

	// WHEN: Updating a cell past the end of row 3 and deleting row 2
	require.NoError(t, m.UpdateCell(ctx, 3, 4, "x"))
	require.NoError(t, m.DeleteRow(ctx, 2))

	// THEN: Later rows shift up and the updated row grew
	rows, err := m.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"b", 2, nil, "x"}, {"c", 3}}, cellsOf(rows))
	assert.Equal(t, 2, m.Len())
}

func TestMemory_OutOfRange(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory("conduct", []any{"a"})

	err := m.DeleteRow(ctx, 1)
	require.Error(t, err, "header row cannot be deleted")
	assert.True(t, errors.Is(err, generic.ErrStoreOperation))

	assert.Error(t, m.UpdateCell(ctx, 3, 1, "x"))
	assert.Error(t, m.UpdateCell(ctx, 2, 0, "x"))
}

func TestMemory_ReadAllReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory("roster", []any{"4D001", "Tan"})

	rows, err := m.ReadAll(ctx)
	require.NoError(t, err)
	rows[0].Cells[1] = "changed"

	again, err := m.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tan", again[0].Cells[1])
}
