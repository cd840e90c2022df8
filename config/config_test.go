package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50*time.Millisecond, cfg.Tick())
	assert.True(t, cfg.EagerHistory)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"apiURL": "https://chat.example.com/api",
		"username": "ash",
		"eagerHistory": false,
		"reconnect": {"backoff": true, "initialMS": 100, "maxMS": 1000}
	}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com/api", cfg.APIURL)
	assert.Equal(t, "ash", cfg.Username)
	assert.False(t, cfg.EagerHistory)
	assert.True(t, cfg.Reconnect.Backoff)
	assert.Equal(t, 100*time.Millisecond, cfg.Reconnect.Initial())
	assert.Equal(t, 64, cfg.DrainBudget)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"username": "ash"}`), 0600))
	t.Setenv("SHINDENSEN_USERNAME", "kai")
	t.Setenv("SHINDENSEN_DRAIN_BUDGET", "8")
	t.Setenv("SHINDENSEN_REDIS_ADDR", "127.0.0.1:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "kai", cfg.Username)
	assert.Equal(t, 8, cfg.DrainBudget)
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"drainBudget": 0}`), 0600))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"apiURL": `), 0600))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"reconnect": {"initialMS": 500, "maxMS": 10}}`), 0600))
	_, err = Load(path)
	assert.Error(t, err)
}
