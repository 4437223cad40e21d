package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Strategy values for Query.Strategy.
const (
	StrategyAuto   = "auto"
	StrategyIndex  = "index"
	StrategyPlanar = "planar"
)

// Config is the full runtime configuration shared by the server and the CLIs.
type Config struct {
	Database Database `yaml:"database"`
	Ingest   Ingest   `yaml:"ingest"`
	Query    Query    `yaml:"query"`
	Server   Server   `yaml:"server"`
	Redis    Redis    `yaml:"redis"`
	Log      Log      `yaml:"log"`
}

type Database struct {
	// URL selects the backend: postgres:// for PostGIS, sqlite: or a *.db path
	// for the plain structured store.
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	SlowThreshold   time.Duration `yaml:"slow_threshold"`
}

type Ingest struct {
	ChunkSize int `yaml:"chunk_size"`
}

type Query struct {
	Strategy string `yaml:"strategy"`
	// Polyline measures planar distance to every segment of a stored line
	// instead of to its two endpoints.
	Polyline bool `yaml:"polyline"`
	// WithinMeters is the radius for roadworks lookups that do not name one.
	WithinMeters float64 `yaml:"within_meters"`
}

type Server struct {
	Port           string   `yaml:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Redis struct {
	Addr             string        `yaml:"addr"`
	Password         string        `yaml:"password"`
	DB               int           `yaml:"db"`
	TTL              time.Duration `yaml:"ttl"`
	GeohashPrecision uint          `yaml:"geohash_precision"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when neither a file nor the
// environment says otherwise.
func Default() Config {
	return Config{
		Database: Database{
			MaxOpenConns:    20,
			MaxIdleConns:    20,
			ConnMaxLifetime: 30 * time.Minute,
			SlowThreshold:   100 * time.Millisecond,
		},
		Ingest: Ingest{ChunkSize: 100},
		Query:  Query{Strategy: StrategyAuto, WithinMeters: 100},
		Server: Server{
			Port:           "5050",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Redis: Redis{TTL: 10 * time.Minute, GeohashPrecision: 8},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from the environment.
//
// Environment variables:
//   - DATABASE_URL
//   - INGEST_CHUNK_SIZE
//   - NEAREST_STRATEGY: auto, index or planar
//   - NEAREST_POLYLINE: true to measure against every segment
//   - PORT, RATE_LIMIT_RPS, RATE_LIMIT_BURST
//   - CORS_ORIGINS: comma separated
//   - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, CACHE_TTL
//   - LOG_LEVEL, LOG_FORMAT
func (c *Config) applyEnv() error {
	var errs []error
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("DATABASE_URL", &c.Database.URL)
	integer("INGEST_CHUNK_SIZE", &c.Ingest.ChunkSize)
	str("NEAREST_STRATEGY", &c.Query.Strategy)
	if v := os.Getenv("NEAREST_POLYLINE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("NEAREST_POLYLINE: %w", err))
		}
		c.Query.Polyline = b
	}
	str("PORT", &c.Server.Port)
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
		}
		c.Server.RateLimitRPS = f
	}
	integer("RATE_LIMIT_BURST", &c.Server.RateLimitBurst)
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	str("REDIS_ADDR", &c.Redis.Addr)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CACHE_TTL: %w", err))
		}
		c.Redis.TTL = d
	}
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	c.Query.Strategy = strings.ToLower(c.Query.Strategy)
	return errors.Join(errs...)
}

// Validate checks the settings every binary depends on.
func (c Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is empty (set DATABASE_URL)")
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest chunk size must be positive, got %d", c.Ingest.ChunkSize)
	}
	switch c.Query.Strategy {
	case StrategyAuto, StrategyIndex, StrategyPlanar:
	default:
		return fmt.Errorf("unknown nearest strategy %q", c.Query.Strategy)
	}
	if c.Query.WithinMeters <= 0 {
		return fmt.Errorf("roadworks radius must be positive, got %g", c.Query.WithinMeters)
	}
	return nil
}
