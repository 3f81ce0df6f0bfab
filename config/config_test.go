package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.True(t, cfg.SeedSample)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.IsType(t, &logrus.TextFormatter{}, cfg.Formatter())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://studio.example.com")
	t.Setenv("SEED_SAMPLE_OVERLAY", "false")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("SHUTDOWN_TIMEOUT", "1s")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "https://studio.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.SeedSample)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	assert.IsType(t, &logrus.JSONFormatter{}, cfg.Formatter())
}

func TestLoad_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("", []string{"-listen", ":8000", "-loglevel", "warn"})
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LISTEN_ADDR=:6123\n"), 0o600))
	t.Setenv("LISTEN_ADDR", "")
	require.NoError(t, os.Unsetenv("LISTEN_ADDR"))
	t.Cleanup(func() { os.Unsetenv("LISTEN_ADDR") })

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":6123", cfg.ListenAddr)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"), nil)
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
		args []string
	}{
		{"seed", "SEED_SAMPLE_OVERLAY", "maybe", nil},
		{"body size", "MAX_BODY_BYTES", "-1", nil},
		{"timeout", "SHUTDOWN_TIMEOUT", "soon", nil},
		{"format", "LOG_FORMAT", "xml", nil},
		{"level", "LOG_LEVEL", "loud", nil},
		{"flag", "", "", []string{"-unknown"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.key != "" {
				t.Setenv(tc.key, tc.val)
			}
			_, err := Load("", tc.args)
			assert.Error(t, err)
		})
	}
}
