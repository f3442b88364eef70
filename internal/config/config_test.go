package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvforecast/pvwatts-importer/internal/solar"
	"github.com/pvforecast/pvwatts-importer/internal/solar/providers"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PVWATTS_API_KEY", "PVWATTS_ENDPOINT", "PVWATTS_HTTP_TIMEOUT",
		"PVWATTS_LOCATIONS_FILE", "PVWATTS_CONFIG", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, solar.ErrMissingAPIKey)
	assert.ErrorIs(t, err, solar.ErrConfig)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("PVWATTS_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, providers.DefaultPVWattsEndpoint, cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "cities.csv", cfg.LocationsFile)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, solar.DefaultParams(), cfg.Defaults)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "pvwatts.yaml")
	yml := `
http_timeout: 45s
locations_file: /data/cities.csv
log_level: debug
defaults:
  system_capacity: 9.5
  tilt: 35
  lat: 52.52
  lon: 13.405
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("PVWATTS_CONFIG", path)
	t.Setenv("PVWATTS_API_KEY", "secret")
	t.Setenv("PVWATTS_HTTP_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout, "env wins over YAML")
	assert.Equal(t, "/data/cities.csv", cfg.LocationsFile)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Equal(t, 9.5, cfg.Defaults.SystemCapacity)
	assert.Equal(t, 35.0, cfg.Defaults.Tilt)
	assert.Equal(t, 52.52, *cfg.Defaults.Lat)
	assert.Equal(t, 13.405, *cfg.Defaults.Lon)
	// untouched keys keep their defaults
	assert.Equal(t, 14.0, cfg.Defaults.Losses)
	assert.Equal(t, 180.0, cfg.Defaults.Azimuth)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PVWATTS_API_KEY", "secret")

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("PVWATTS_HTTP_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorIs(t, err, solar.ErrConfig)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := Load()
		assert.ErrorIs(t, err, solar.ErrConfig)
		assert.NotErrorIs(t, err, solar.ErrMissingAPIKey)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("PVWATTS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		assert.ErrorIs(t, err, solar.ErrConfig)
	})
}
