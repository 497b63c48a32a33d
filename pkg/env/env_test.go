package env_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manzanit0/tourplanner/pkg/env"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "NOMINATIM_URL", "HTTP_TIMEOUT", "GEOCODE_CACHE_TTL", "MAP_IDLE_TIMEOUT", "DEBUG", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := env.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, env.DefaultPort, cfg.Port)
	assert.Equal(t, env.DefaultNominatimURL, cfg.NominatimURL)
	assert.Equal(t, env.DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, env.DefaultGeocodeCacheTTL, cfg.GeocodeCacheTTL)
	assert.Equal(t, env.DefaultMapIdleTimeout, cfg.MapIdleTimeout)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOMINATIM_URL", "http://localhost:7070/")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("DEBUG", "true")
	t.Setenv("CORS_ORIGINS", "http://localhost:4200, http://example.com ,")

	cfg, err := env.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://localhost:7070", cfg.NominatimURL)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"http://localhost:4200", "http://example.com"}, cfg.CORSOrigins)
}

func TestLoadDotenvFile(t *testing.T) {
	t.Setenv("ORS_API_KEY", "")
	os.Unsetenv("ORS_API_KEY")

	f := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(f, []byte("ORS_API_KEY=from-file\n"), 0o600))

	cfg, err := env.Load(f)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.ORSAPIKey)

	os.Unsetenv("ORS_API_KEY")
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	testCases := []struct {
		desc string
		key  string
		val  string
	}{
		{desc: "timeout without unit", key: "HTTP_TIMEOUT", val: "10"},
		{desc: "cache ttl garbage", key: "GEOCODE_CACHE_TTL", val: "forever"},
		{desc: "debug not a bool", key: "DEBUG", val: "sometimes"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			t.Setenv(tC.key, tC.val)

			_, err := env.Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}

func TestRequireDatabase(t *testing.T) {
	assert.Error(t, (&env.Config{}).RequireDatabase())
	assert.NoError(t, (&env.Config{DatabaseURL: "postgres://localhost/db"}).RequireDatabase())
}
