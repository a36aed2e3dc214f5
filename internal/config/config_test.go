package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file anywhere near the test working directory: defaults only.
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "groundstation", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Link.ReadTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Link.SendSpacing)
	assert.Equal(t, uint16(1047), cfg.Link.TeamID)
	assert.Equal(t, uint16(0x0001), cfg.Link.DestAddr)
	assert.Equal(t, 4096, cfg.Link.BufferSize)
	assert.Equal(t, "logs/telemetry.log", cfg.Telemetry.File)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enable)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: fieldstation
link:
  addr: 192.168.4.2:9000
  sendSpacing: 1s
  teamId: 2033
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fieldstation", cfg.App.Name)
	assert.Equal(t, "192.168.4.2:9000", cfg.Link.Addr)
	assert.Equal(t, time.Second, cfg.Link.SendSpacing)
	assert.Equal(t, uint16(2033), cfg.Link.TeamID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 4096, cfg.Link.EventBacklog)
}

func TestLoad_EnvConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  name: envstation
link:
  teamId: 3001
`), 0o644))

	t.Setenv("GS_CONFIG", path)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "envstation", cfg.App.Name)
	assert.Equal(t, uint16(3001), cfg.Link.TeamID)
}
