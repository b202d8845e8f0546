package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "PORT", "LOG_LEVEL", "DEFAULT_LOCALE", "ALLOWED_ORIGINS",
		"QUIZ_CATALOG", "TICK_INTERVAL", "AUDIO_CUES", "NATS_URL", "NATS_STREAM",
		"NATS_SUBJECT_PREFIX",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.RelayEnabled())
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "livesession.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
log_level: debug
tick_interval: 500ms
audio_cues: false
allowed_origins: [https://a.example.com]
nats:
  url: nats://file:4222
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("ALLOWED_ORIGINS", "https://b.example.com, https://c.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 500*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.AudioCues)
	assert.Equal(t, []string{"https://b.example.com", "https://c.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
	assert.Equal(t, "ROOM_EVENTS", cfg.NATS.Stream)
	assert.True(t, cfg.RelayEnabled())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing file", env: map[string]string{"CONFIG_FILE": "/does/not/exist.yaml"}},
		{name: "bad port", env: map[string]string{"PORT": "http"}},
		{name: "bad level", env: map[string]string{"LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.TickInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.Stream = ""
	assert.Error(t, cfg.Validate())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "nope")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_LIST", " , ")

	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, time.Second, getEnvAsDuration("X_DUR", time.Second))
	assert.Equal(t, []string{"*"}, getEnvAsList("X_LIST", []string{"*"}))
}
