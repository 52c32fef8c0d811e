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
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SIGHTENGINE_API_USER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini-2.0-flash", cfg.Vision.Model)
	assert.Equal(t, 2, cfg.Vision.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Sightengine.Timeout)
	assert.Equal(t, int64(25<<20), cfg.Media.MaxBytes)
	assert.False(t, cfg.Sightengine.Enabled())
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SIGHTENGINE_API_USER", "user")
	t.Setenv("SIGHTENGINE_API_SECRET", "secret")
	t.Setenv("ROBOFLOW_API_KEY", "robo")
	t.Setenv("GEMINI_API_KEY", "gem")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Sightengine.Enabled())
	assert.Equal(t, "robo", cfg.Roboflow.APIKey)
	assert.Equal(t, "gem", cfg.Vision.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("vision:\n  model: custom-model\n  max_attempts: 3\nmedia:\n  timeout: 5s\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "custom-model", cfg.Vision.Model)
	assert.Equal(t, 3, cfg.Vision.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Media.Timeout)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}
