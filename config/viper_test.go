package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.APIPort)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 6, cfg.Solver.MaxDepth)
	assert.Equal(t, 5*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, time.Duration(0), cfg.ClientTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_port = 8080
api_keys = ["k1", "k2"]
log_level = "warn"
client_timeout = "5s"

[cache]
backend = "redis"
ttl = "1m"

[history]
enabled = true
db_path = "/tmp/h.db"
`), 0o644))
	t.Setenv("INTEGRAL_CACHE_PREFIX", "env:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.Equal(t, 5*time.Second, cfg.ClientTimeout)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "env:", cfg.Cache.Prefix)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("api_port = = 1"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
