// Package config holds the immutable server configuration.
//
// Values come from, in increasing precedence: built-in defaults, a .env
// file, the process environment (GEOSERVE_* variables) and command-line
// flags bound by cmd/geoserve.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/en9inerd/geoserve/realip"
	"github.com/en9inerd/geoserve/validator"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GEOSERVE_"

// Mount binds a URL prefix such as "/static/" to a directory.
type Mount struct {
	Prefix string
	Dir    string
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Addr        string
	StaticDir   string
	GeoJSONDir  string
	RequireDirs bool
	HealthPath  string

	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration

	MaxInFlight    int64
	RateLimit      float64
	RateBurst      int
	TrustedProxies []string

	LogFormat string
	LogLevel  string
}

// Default returns the stock configuration:
// port 8000 with the static and geojson directories of the working directory.
func Default() Config {
	return Config{
		Addr:              ":8000",
		StaticDir:         "static",
		GeoJSONDir:        "geojson",
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		RateBurst:         20,
		LogFormat:         "auto",
		LogLevel:          "info",
	}
}

// Mounts returns the static mounts in registration order.
func (c Config) Mounts() []Mount {
	return []Mount{
		{Prefix: "/static/", Dir: c.StaticDir},
		{Prefix: "/geojson/", Dir: c.GeoJSONDir},
	}
}

// Load reads envFile (if it exists) into the environment without
// overriding variables already set, then applies GEOSERVE_* variables on
// top of Default. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv applies variables returned by lookup on top of Default.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	e := envReader{lookup: lookup}

	e.str("ADDR", &c.Addr)
	e.str("STATIC_DIR", &c.StaticDir)
	e.str("GEOJSON_DIR", &c.GeoJSONDir)
	e.boolean("REQUIRE_DIRS", &c.RequireDirs)
	e.str("HEALTH_PATH", &c.HealthPath)
	e.duration("READ_HEADER_TIMEOUT", &c.ReadHeaderTimeout)
	e.duration("WRITE_TIMEOUT", &c.WriteTimeout)
	e.duration("IDLE_TIMEOUT", &c.IdleTimeout)
	e.duration("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
	e.duration("REQUEST_TIMEOUT", &c.RequestTimeout)
	e.i64("MAX_IN_FLIGHT", &c.MaxInFlight)
	e.float("RATE_LIMIT", &c.RateLimit)
	e.integer("RATE_BURST", &c.RateBurst)
	e.list("TRUSTED_PROXIES", &c.TrustedProxies)
	e.str("LOG_FORMAT", &c.LogFormat)
	e.str("LOG_LEVEL", &c.LogLevel)

	if len(e.errs) > 0 {
		return Config{}, errors.Join(e.errs...)
	}
	return c, nil
}

// Validate implements validator.Validatable.
func (c Config) Validate(v *validator.Validator) {
	v.CheckField(validator.NotBlank(c.Addr), "addr", "cannot be blank")
	v.CheckField(validator.NotBlank(c.StaticDir), "static-dir", "cannot be blank")
	v.CheckField(validator.NotBlank(c.GeoJSONDir), "geojson-dir", "cannot be blank")
	v.CheckField(c.HealthPath == "" || (strings.HasPrefix(c.HealthPath, "/") && c.HealthPath != "/"), "health-path", "must start with / and not be the root")

	for name, d := range map[string]time.Duration{
		"read-header-timeout": c.ReadHeaderTimeout,
		"write-timeout":       c.WriteTimeout,
		"idle-timeout":        c.IdleTimeout,
		"shutdown-timeout":    c.ShutdownTimeout,
		"request-timeout":     c.RequestTimeout,
	} {
		v.CheckField(validator.MinDuration(d, 0), name, "cannot be negative")
	}

	v.CheckField(validator.MinInt(c.MaxInFlight, 0), "max-in-flight", "cannot be negative")
	v.CheckField(validator.MinFloat(c.RateLimit, 0), "rate-limit", "cannot be negative")
	v.CheckField(c.RateLimit == 0 || c.RateBurst >= 1, "rate-burst", "must be at least 1 when rate-limit is set")
	v.CheckField(validator.PermittedValue(c.LogFormat, "auto", "text", "json"), "log-format", "must be auto, text or json")
	v.CheckField(validator.PermittedValue(strings.ToLower(c.LogLevel), "debug", "info", "warn", "error"), "log-level", "must be debug, info, warn or error")

	if _, err := realip.NewResolver(c.TrustedProxies); err != nil {
		v.AddFieldError("trusted-proxies", err.Error())
	}

	prefixes := make([]string, 0, 2)
	for _, m := range c.Mounts() {
		v.CheckField(validMountPrefix(m.Prefix), "mounts", fmt.Sprintf("invalid prefix %q", m.Prefix))
		v.CheckField(m.Prefix != c.HealthPath && m.Prefix != c.HealthPath+"/", "health-path", fmt.Sprintf("collides with mount %q", m.Prefix))
		prefixes = append(prefixes, m.Prefix)
	}
	v.CheckField(validator.Unique(prefixes), "mounts", "prefixes must be unique")
}

// Check validates c and returns every problem found in one error.
func (c Config) Check() error {
	return validator.Validate(c)
}

// a mount prefix is "/name/", never the root
func validMountPrefix(p string) bool {
	return len(p) > 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") && !strings.Contains(p, "//")
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *envReader) i64(key string, dst *int64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = f
}
