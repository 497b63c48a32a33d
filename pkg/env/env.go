// Package env reads the service configuration from environment variables. A
// .env file in the working directory is loaded first when present; variables
// already set in the environment win over it.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort               = "8080"
	DefaultNominatimURL       = "https://nominatim.openstreetmap.org"
	DefaultNominatimUserAgent = "tourplanner/1.0"
	DefaultORSURL             = "https://api.openrouteservice.org"
	DefaultHTTPTimeout        = 10 * time.Second
	DefaultGeocodeCacheTTL    = 24 * time.Hour
	DefaultMapIdleTimeout     = 30 * time.Minute
)

type Config struct {
	Port        string
	DatabaseURL string

	NominatimURL       string
	NominatimUserAgent string

	ORSURL    string
	ORSAPIKey string

	// RedisURL enables the geocode cache when set.
	RedisURL        string
	GeocodeCacheTTL time.Duration

	// MapIdleTimeout is how long an unused map session is kept.
	MapIdleTimeout time.Duration

	HTTPTimeout time.Duration
	CORSOrigins []string
	Debug       bool
}

// Load reads the configuration. An optional dotenv file path may be given;
// otherwise ".env" is tried.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:               getOr("PORT", DefaultPort),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		NominatimURL:       strings.TrimRight(getOr("NOMINATIM_URL", DefaultNominatimURL), "/"),
		NominatimUserAgent: getOr("NOMINATIM_USER_AGENT", DefaultNominatimUserAgent),
		ORSURL:             strings.TrimRight(getOr("ORS_URL", DefaultORSURL), "/"),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		RedisURL:           os.Getenv("REDIS_URL"),
		CORSOrigins:        splitList(os.Getenv("CORS_ORIGINS")),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", DefaultHTTPTimeout); err != nil {
		return nil, err
	}

	if cfg.GeocodeCacheTTL, err = getDuration("GEOCODE_CACHE_TTL", DefaultGeocodeCacheTTL); err != nil {
		return nil, err
	}

	if cfg.MapIdleTimeout, err = getDuration("MAP_IDLE_TIMEOUT", DefaultMapIdleTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("DEBUG"); v != "" {
		if cfg.Debug, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("failed to parse DEBUG as bool: %w", err)
		}
	}

	return cfg, nil
}

// RequireDatabase is called by the commands that cannot run without Postgres.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing DATABASE_URL environment variable. Please check your environment.")
	}
	return nil
}

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s as duration: %w", key, err)
	}

	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
