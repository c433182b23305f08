package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/generic"
	"github.com/warp/parade-state/generic/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type fixture struct {
	svc    *app.Service
	tables app.Tables
	logs   *observer.ObservedLogs
}

func rosterRows() [][]any {
	return [][]any{
		{"4D001", "Tan Wei Ming", "Platoon 1", 14, ""},
		{"4D002", "Muhammad Irfan", "Platoon 1", 3, "01012025"},
		{"4D003", "Lim Jun Hao", "Platoon 1", 14, ""},
		{"4D101", "Chen Zhi Hao", "Platoon 2", 14, ""},
	}
}

func newFixture(t *testing.T, status ...[]any) *fixture {
	t.Helper()
	return newFixtureWith(t, app.Tables{
		Roster:  store.NewMemory(app.SheetRoster, rosterRows()...),
		Status:  store.NewMemory(app.SheetStatus, status...),
		Conduct: store.NewMemory(app.SheetConduct),
	})
}

func newFixtureWith(t *testing.T, tables app.Tables) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	svc := app.NewService(tables, app.Options{
		DefaultLeaveBalance: 14,
		SimilarityThreshold: 0.6,
		Location:            time.UTC,
	}, zap.New(core))
	return &fixture{svc: svc, tables: tables, logs: logs}
}

func cells(t *testing.T, table generic.Table) [][]any {
	t.Helper()
	rows, err := table.ReadAll(context.Background())
	require.NoError(t, err)
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells
	}
	return out
}

// flakyTable fails the chosen operation until told otherwise.
type flakyTable struct {
	generic.Table
	failAppend bool
	failDelete bool
	failRead   bool
}

var errDisk = errors.New("disk unavailable")

func (f *flakyTable) ReadAll(ctx context.Context) ([]generic.Row, error) {
	if f.failRead {
		return nil, errDisk
	}
	return f.Table.ReadAll(ctx)
}

func (f *flakyTable) Append(ctx context.Context, cells []any) error {
	if f.failAppend {
		return errDisk
	}
	return f.Table.Append(ctx, cells)
}

func (f *flakyTable) DeleteRow(ctx context.Context, row int) error {
	if f.failDelete {
		return errDisk
	}
	return f.Table.DeleteRow(ctx, row)
}
