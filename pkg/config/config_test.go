package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Log    LogConfig   `yaml:"log"`
	Server testSection `yaml:"server"`
}

type testSection struct {
	Address  string        `yaml:"address" env:"TEST_SERVER_ADDRESS" default:":9090"`
	Interval time.Duration `yaml:"interval" default:"200ms"`
	Quality  int           `yaml:"quality" default:"50"`
	Verbose  bool          `yaml:"verbose" env:"TEST_SERVER_VERBOSE" default:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg, ""))

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 200*time.Millisecond, cfg.Server.Interval)
	assert.Equal(t, 50, cfg.Server.Quality)
	assert.False(t, cfg.Server.Verbose)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
log:
  level: debug
server:
  address: ":7070"
  interval: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	var cfg testConfig
	require.NoError(t, Load(&cfg, path))

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, time.Second, cfg.Server.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50, cfg.Server.Quality)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  address: \":7070\"\n"), 0o644))

	t.Setenv("TEST_SERVER_ADDRESS", ":6060")
	t.Setenv("TEST_SERVER_VERBOSE", "true")

	var cfg testConfig
	require.NoError(t, Load(&cfg, path))

	assert.Equal(t, ":6060", cfg.Server.Address)
	assert.True(t, cfg.Server.Verbose)
}

func TestLoad_MissingFileIsOptional(t *testing.T) {
	var cfg testConfig
	require.NoError(t, Load(&cfg, "/nonexistent/config.yaml"))
	assert.Equal(t, ":9090", cfg.Server.Address)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	var cfg testConfig
	assert.Error(t, Load(&cfg, path))
}
