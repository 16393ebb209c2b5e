package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "!", cfg.CommandPrefix)
	assert.Equal(t, "_go_back", cfg.Controls.GoBack)
	assert.Equal(t, "_reload", cfg.Controls.Reload)
	assert.Equal(t, "arbor:session:", cfg.Redis.Prefix)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	raw := `
listen: ":9090"
log_level: debug
controls:
  go_back: _back
redis:
  addr: "localhost:6379"
  ttl: 24h
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "_back", cfg.Controls.GoBack)
	// Untouched keys keep their defaults.
	assert.Equal(t, "_reload", cfg.Controls.Reload)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, Duration(24*time.Hour), cfg.Redis.TTL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`listen: ":9090"`), 0o600))
	t.Setenv("ARBOR_LISTEN", ":7070")
	t.Setenv("ARBOR_REDIS_ADDR", "redis:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_EmptyPathKeepsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
