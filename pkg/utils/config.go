package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config drives the API server. Values come from, in increasing priority:
// built-in defaults, the TOML config file, then BOOKDEN_* environment
// variables.
type Config struct {
	DBPath         string `toml:"db_path"`
	HTTPAddr       string `toml:"http_addr"`
	EventAddr      string `toml:"event_addr"`
	CoverDir       string `toml:"cover_dir"`
	CacheCapacity  int    `toml:"cache_capacity"`
	AdapterTimeout int    `toml:"adapter_timeout_seconds"`
	JWTSecret      string `toml:"jwt_secret"`
	JWTIssuer      string `toml:"jwt_issuer"`
	JWTTTLHours    int    `toml:"jwt_ttl_hours"`
}

func defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	dataDir := filepath.Join(home, ".bookden")
	return Config{
		DBPath:         filepath.Join(dataDir, "library.db"),
		HTTPAddr:       ":8080",
		EventAddr:      ":7070",
		CoverDir:       filepath.Join(dataDir, "covers"),
		CacheCapacity:  128,
		AdapterTimeout: 8,
		JWTSecret:      "dev-secret-change-me",
		JWTIssuer:      "bookden",
		JWTTTLHours:    24,
	}
}

// ConfigPath returns the config file location: BOOKDEN_CONFIG if set,
// otherwise ~/.bookden/config.toml.
func ConfigPath() string {
	if p := os.Getenv("BOOKDEN_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".bookden", "config.toml")
}

// Load reads the config file if present and applies environment overrides.
// A missing file is not an error; a malformed one is.
func Load() (Config, error) {
	cfg := defaults()

	path := ConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults + env only
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)

	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 128
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = 8
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOOKDEN_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BOOKDEN_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("BOOKDEN_EVENT_ADDR"); v != "" {
		cfg.EventAddr = v
	}
	if v := os.Getenv("BOOKDEN_COVER_DIR"); v != "" {
		cfg.CoverDir = v
	}
	if v := os.Getenv("BOOKDEN_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheCapacity = n
		}
	}
	if v := os.Getenv("BOOKDEN_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("BOOKDEN_JWT_ISSUER"); v != "" {
		cfg.JWTIssuer = v
	}
	if v := os.Getenv("BOOKDEN_JWT_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.JWTTTLHours = n
		}
	}
}

// JWTDuration is the token lifetime implied by JWTTTLHours.
func (c Config) JWTDuration() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// AdapterHTTPTimeout is the per-call network budget for source adapters.
func (c Config) AdapterHTTPTimeout() time.Duration {
	return time.Duration(c.AdapterTimeout) * time.Second
}
