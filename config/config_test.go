package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "model:\n  bundle_path: /srv/bundle.json\n  cache_size: 64\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/bundle.json", cfg.Model.BundlePath)
	assert.Equal(t, 64, cfg.Model.CacheSize)
	assert.Equal(t, 8080, cfg.Http.Port)
	assert.Equal(t, 30*time.Second, cfg.Http.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Http.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "http:\n  port: 9000\n  timeout: 5s\nlog:\n  level: debug\n")
	t.Setenv("OBESITY_HTTP_PORT", "9100")
	t.Setenv("OBESITY_BUNDLE_PATH", "/tmp/other.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Http.Port)
	assert.Equal(t, 5*time.Second, cfg.Http.Timeout)
	assert.Equal(t, "/tmp/other.json", cfg.Model.BundlePath)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "http: [unbalanced"))
	require.Error(t, err)

	t.Setenv("OBESITY_HTTP_PORT", "eighty")
	_, err = Load(writeConfig(t, "{}\n"))
	require.Error(t, err)
}
