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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "data", cfg.Data.Dir)
	assert.Equal(t, time.Minute, cfg.Engine.TickInterval)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menuboard.yaml")
	file := `
server:
  port: "9090"
engine:
  tick_interval: 30s
session:
  ttl: 1h
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(file), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Engine.TickInterval)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched fields keep their defaults.
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "data", cfg.Data.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menuboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o644))
	t.Setenv("PORT", "7070")
	t.Setenv("TICK_INTERVAL", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Engine.TickInterval)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "not-a-port"}},
		{"bad duration", map[string]string{"TICK_INTERVAL": "soon"}},
		{"sub-second tick", map[string]string{"TICK_INTERVAL": "100ms"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}
