package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	c := Default()

	assert.Equal(t, ":8000", c.Addr)
	assert.Equal(t, []Mount{
		{Prefix: "/static/", Dir: "static"},
		{Prefix: "/geojson/", Dir: "geojson"},
	}, c.Mounts())
	assert.False(t, c.RequireDirs)
	assert.Empty(t, c.HealthPath)
	assert.NoError(t, c.Check())
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(lookupMap(map[string]string{
		"GEOSERVE_ADDR":            "127.0.0.1:9000",
		"GEOSERVE_STATIC_DIR":      "/srv/www",
		"GEOSERVE_GEOJSON_DIR":     " /srv/maps ",
		"GEOSERVE_REQUIRE_DIRS":    "true",
		"GEOSERVE_HEALTH_PATH":     "/healthz",
		"GEOSERVE_WRITE_TIMEOUT":   "5s",
		"GEOSERVE_MAX_IN_FLIGHT":   "64",
		"GEOSERVE_RATE_LIMIT":      "2.5",
		"GEOSERVE_RATE_BURST":      "5",
		"GEOSERVE_TRUSTED_PROXIES": "10.0.0.1, 192.168.0.0/16,,",
		"GEOSERVE_LOG_FORMAT":      "json",
		"GEOSERVE_LOG_LEVEL":       "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, "/srv/www", c.StaticDir)
	assert.Equal(t, "/srv/maps", c.GeoJSONDir)
	assert.True(t, c.RequireDirs)
	assert.Equal(t, "/healthz", c.HealthPath)
	assert.Equal(t, 5*time.Second, c.WriteTimeout)
	assert.Equal(t, 10*time.Second, c.ReadHeaderTimeout)
	assert.EqualValues(t, 64, c.MaxInFlight)
	assert.InDelta(t, 2.5, c.RateLimit, 1e-9)
	assert.Equal(t, 5, c.RateBurst)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, c.TrustedProxies)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, "debug", c.LogLevel)
	assert.NoError(t, c.Check())
}

func TestFromEnvReportsEveryBadValue(t *testing.T) {
	_, err := FromEnv(lookupMap(map[string]string{
		"GEOSERVE_REQUIRE_DIRS":  "maybe",
		"GEOSERVE_IDLE_TIMEOUT":  "forever",
		"GEOSERVE_MAX_IN_FLIGHT": "lots",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOSERVE_REQUIRE_DIRS")
	assert.Contains(t, err.Error(), "GEOSERVE_IDLE_TIMEOUT")
	assert.Contains(t, err.Error(), "GEOSERVE_MAX_IN_FLIGHT")
}

func TestCheckRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"BlankAddr", func(c *Config) { c.Addr = " " }, "addr"},
		{"BlankStaticDir", func(c *Config) { c.StaticDir = "" }, "static-dir"},
		{"BlankGeoJSONDir", func(c *Config) { c.GeoJSONDir = "" }, "geojson-dir"},
		{"RelativeHealthPath", func(c *Config) { c.HealthPath = "healthz" }, "health-path"},
		{"RootHealthPath", func(c *Config) { c.HealthPath = "/" }, "health-path"},
		{"HealthPathOnMount", func(c *Config) { c.HealthPath = "/static" }, "health-path"},
		{"NegativeTimeout", func(c *Config) { c.ShutdownTimeout = -time.Second }, "shutdown-timeout"},
		{"NegativeInFlight", func(c *Config) { c.MaxInFlight = -1 }, "max-in-flight"},
		{"NegativeRate", func(c *Config) { c.RateLimit = -1 }, "rate-limit"},
		{"ZeroBurst", func(c *Config) { c.RateLimit = 1; c.RateBurst = 0 }, "rate-burst"},
		{"UnknownLogFormat", func(c *Config) { c.LogFormat = "xml" }, "log-format"},
		{"UnknownLogLevel", func(c *Config) { c.LogLevel = "chatty" }, "log-level"},
		{"BadProxy", func(c *Config) { c.TrustedProxies = []string{"proxy.local"} }, "trusted-proxies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			err := c.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field+":")
		})
	}
}

func TestValidMountPrefix(t *testing.T) {
	assert.True(t, validMountPrefix("/static/"))
	assert.False(t, validMountPrefix("/"))
	assert.False(t, validMountPrefix("static/"))
	assert.False(t, validMountPrefix("/static"))
	assert.False(t, validMountPrefix("/a//b/"))
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GEOSERVE_ADDR=:7070\nGEOSERVE_STATIC_DIR=public\n"), 0o644))

	// process environment wins over the file
	t.Setenv("GEOSERVE_STATIC_DIR", "assets")
	// t.Setenv restores the variable godotenv sets as well
	t.Setenv("GEOSERVE_ADDR", "")
	require.NoError(t, os.Unsetenv("GEOSERVE_ADDR"))

	c, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":7070", c.Addr)
	assert.Equal(t, "assets", c.StaticDir)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().StaticDir, c.StaticDir)
}
