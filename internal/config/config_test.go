package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*time.Second, cfg.Interval())
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhcpconsole.ini")
	require.NoError(t, os.WriteFile(path, []byte(`
APIBase = http://router/cgi-bin/enhanced-dhcp-api
HTTPListen = :9000
RefreshInterval = 15
WatchCatalog = false
TimeZone = UTC
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://router/cgi-bin/enhanced-dhcp-api", cfg.APIBase)
	assert.Equal(t, ":9000", cfg.HTTPListen)
	assert.Equal(t, 15, cfg.RefreshInterval)
	assert.False(t, cfg.WatchCatalog)
	assert.Equal(t, 10, cfg.RequestTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.ini")))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APIBASE", "http://10.0.0.1/api")
	t.Setenv("REFRESHINTERVAL", "45")
	t.Setenv("REQUESTTIMEOUT", "not-a-number")
	t.Setenv("WATCHCATALOG", "false")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "http://10.0.0.1/api", cfg.APIBase)
	assert.Equal(t, 45, cfg.RefreshInterval)
	assert.Equal(t, 10, cfg.RequestTimeout)
	assert.False(t, cfg.WatchCatalog)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty api base", func(c *Config) { c.APIBase = "" }},
		{"zero refresh", func(c *Config) { c.RefreshInterval = 0 }},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -1 }},
		{"zero notification limit", func(c *Config) { c.NotificationLimit = 0 }},
		{"bad timezone", func(c *Config) { c.TimeZone = "Mars/Olympus_Mons" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewUsesEnvOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dhcpconsole.ini")
	require.NoError(t, os.WriteFile(path, []byte("refreshinterval = 20\n"), 0o644))
	t.Setenv("REFRESHINTERVAL", "60")

	cfg, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.RefreshInterval)

	t.Setenv("REFRESHINTERVAL", "0")
	_, err = New(path)
	assert.Error(t, err)
}
