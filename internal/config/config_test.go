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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, ":2112", cfg.Server.MetricsAddress)
	assert.Equal(t, 1000, cfg.Analysis.BootstrapResamples)
	assert.Equal(t, int64(42), cfg.Analysis.BootstrapSeed)
	assert.InDelta(t, 0.05, cfg.Analysis.ConfidenceAlpha, 1e-12)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
server:
  address: ":9090"
database:
  path: /tmp/fleet.db
analysis:
  bootstrapResamples: 250
  confidenceAlpha: 0.10
cache:
  enabled: false
logging:
  level: debug
  json: true
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "/tmp/fleet.db", cfg.Database.Path)
	assert.Equal(t, 250, cfg.Analysis.BootstrapResamples)
	assert.InDelta(t, 0.10, cfg.Analysis.ConfidenceAlpha, 1e-12)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Logging.JSON)
	// Unset file values keep defaults.
	assert.Equal(t, 100, cfg.Analysis.CurvePoints)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RELIABASE_SERVER_ADDRESS", ":7070")
	t.Setenv("RELIABASE_BOOTSTRAP_RESAMPLES", "400")
	t.Setenv("RELIABASE_CACHE_TTL", "90s")
	t.Setenv("RELIABASE_CACHE_ENABLED", "false")
	t.Setenv("RELIABASE_LOG_FORMAT", "json")
	t.Setenv("RELIABASE_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, 400, cfg.Analysis.BootstrapResamples)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Logging.JSON)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("RELIABASE_CONFIDENCE_ALPHA", "1.5")
	_, err := Load("")
	assert.Error(t, err)
}
