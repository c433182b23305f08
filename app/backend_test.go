package app_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/config"
	"github.com/warp/parade-state/store/cache"
)

func TestOpenBackend(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		file    string
		ttl     string
		cached  bool
	}{
		{name: "memory uncached", backend: config.BackendMemory, ttl: "0"},
		{name: "sqlite cached", backend: config.BackendSQLite, file: "parade.db", ttl: "3m", cached: true},
		{name: "xlsx cached", backend: config.BackendXLSX, file: "parade.xlsx", ttl: "1m", cached: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Store.Backend = tt.backend
			cfg.Store.CacheTTL = tt.ttl
			if tt.file != "" {
				cfg.Store.Path = filepath.Join(t.TempDir(), tt.file)
			}

			b, err := app.OpenBackend(cfg, zap.NewNop())
			require.NoError(t, err)
			defer b.Close()

			_, isCached := b.Roster.(*cache.Table)
			assert.Equal(t, tt.cached, isCached)
			assert.Equal(t, app.SheetRoster, b.Roster.Name())

			ctx := context.Background()
			require.NoError(t, b.Status.Append(ctx, []any{"Platoon 1", "4D001", "MC", "01012025", "02012025", "Sgt Lee"}))
			rows, err := b.Status.ReadAll(ctx)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, 2, rows[0].Number)
		})
	}
}

func TestOpenBackend_RejectsUnknown(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Backend = "postgres"

	_, err := app.OpenBackend(cfg, zap.NewNop())

	assert.Error(t, err)
}
