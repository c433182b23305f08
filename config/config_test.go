package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/parade-state/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 14, cfg.Leave.DefaultBalance)
	assert.Equal(t, 0.6, cfg.Outliers.SimilarityThreshold)
	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, ttl)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	// GIVEN: A YAML file and an environment override
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "parade.yaml", `
server:
  port: 9090
store:
  backend: xlsx
  path: ./parade.xlsx
  cache_ttl: "0"
leave:
  default_balance: 18
timezone: Asia/Singapore
`)
	t.Setenv("PARADE_PORT", "7070")
	t.Setenv("PARADE_SIMILARITY_THRESHOLD", "0.75")

	// WHEN: Loading
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN: Environment wins over the file, the file over defaults
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, config.BackendXLSX, cfg.Store.Backend)
	assert.Equal(t, "./parade.xlsx", cfg.Store.Path)
	assert.Equal(t, 18, cfg.Leave.DefaultBalance)
	assert.Equal(t, 0.75, cfg.Outliers.SimilarityThreshold)

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Zero(t, ttl)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Singapore", loc.String())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "PARADE_STORE_BACKEND=memory\nPARADE_DEFAULT_LEAVE=10\n")
	t.Cleanup(func() {
		os.Unsetenv("PARADE_STORE_BACKEND")
		os.Unsetenv("PARADE_DEFAULT_LEAVE")
	})

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Leave.DefaultBalance)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"PARADE_STORE_BACKEND": "postgres"}},
		{"bad port", map[string]string{"PARADE_PORT": "eighty"}},
		{"threshold out of range", map[string]string{"PARADE_SIMILARITY_THRESHOLD": "1.5"}},
		{"bad ttl", map[string]string{"PARADE_CACHE_TTL": "soon"}},
		{"bad timezone", map[string]string{"PARADE_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
