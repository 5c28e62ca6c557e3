package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MAX_QUANTITY", "")
	t.Setenv("DEBOUNCE_WINDOW", "")

	cfg := Load()

	assert.Equal(t, 99, cfg.MaxQuantity)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.DebounceWindow)
	assert.Equal(t, 8*time.Second, cfg.Client.MutationTimeout)
	assert.Equal(t, 30*time.Second, cfg.Client.ProbeInterval)
	assert.Equal(t, 3, cfg.Client.LoadRetries)
	assert.Equal(t, 1500*time.Millisecond, cfg.Client.LoadBackoff)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MAX_QUANTITY", "999")
	t.Setenv("DEBOUNCE_WINDOW", "50ms")
	t.Setenv("SEED_DEMO", "true")
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 999, cfg.MaxQuantity)
	assert.Equal(t, 50*time.Millisecond, cfg.Client.DebounceWindow)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, 8080, cfg.HTTPPort, "invalid int falls back to default")
}

func TestLoadFileOverlay(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "cartsync.yaml")
	body := []byte("max_quantity: 999\nclient:\n  api_url: http://shop.local\n  probe_interval: 10s\n")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 999, cfg.MaxQuantity)
	assert.Equal(t, "http://shop.local", cfg.Client.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Client.ProbeInterval)
	assert.Equal(t, "warn", cfg.LogLevel, "env value survives when file omits the key")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
