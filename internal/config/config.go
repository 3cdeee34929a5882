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
)

// Storage backends.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	Port            string
	ShutdownTimeout time.Duration
	LogLevel        string

	StorageBackend string

	// Firestore
	ProjectID                    string
	GoogleApplicationCredentials string

	// Postgres
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Per-client rate limit on /api; zero RPS disables it.
	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string
}

// LoadDotEnv loads variables from the given files (".env" when none are
// given) without overriding variables that are already set. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment. Malformed values are
// reported together in a single error.
func Load() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Port:            p.str("PORT", "8000"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        p.str("LOG_LEVEL", "info"),

		StorageBackend: strings.ToLower(p.str("STORAGE_BACKEND", BackendMemory)),

		ProjectID: firstNonEmpty(
			os.Getenv("FIREBASE_PROJECT_ID"),
			os.Getenv("GOOGLE_CLOUD_PROJECT"),
		),
		GoogleApplicationCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  int32(p.integer("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(p.integer("DB_MIN_CONNS", 2)),

		RateLimitRPS:   p.float("RATE_LIMIT_RPS", 20),
		RateLimitBurst: p.integer("RATE_LIMIT_BURST", 40),

		CORSAllowedOrigins: splitList(p.str("CORS_ALLOWED_ORIGINS", "*")),
	}

	p.check(cfg.Port != "", "PORT must not be empty")
	if port, err := strconv.Atoi(cfg.Port); err == nil {
		p.check(port > 0 && port < 65536, "PORT must be between 1 and 65535")
	}
	p.check(cfg.ShutdownTimeout > 0, "SHUTDOWN_TIMEOUT must be positive")

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendFirestore:
		p.check(cfg.ProjectID != "", "FIREBASE_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required for the firestore backend")
	case BackendPostgres:
		p.check(cfg.DatabaseURL != "", "DATABASE_URL is required for the postgres backend")
		p.check(cfg.DBMaxConns > 0, "DB_MAX_CONNS must be positive")
		p.check(cfg.DBMinConns >= 0 && cfg.DBMinConns <= cfg.DBMaxConns, "DB_MIN_CONNS must be between 0 and DB_MAX_CONNS")
	default:
		p.check(false, fmt.Sprintf("STORAGE_BACKEND %q is not one of memory, firestore, postgres", cfg.StorageBackend))
	}

	p.check(cfg.RateLimitRPS >= 0, "RATE_LIMIT_RPS must not be negative")
	p.check(cfg.RateLimitRPS == 0 || cfg.RateLimitBurst > 0, "RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	p.check(len(cfg.CORSAllowedOrigins) > 0, "CORS_ALLOWED_ORIGINS must list at least one origin")

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// RateLimitEnabled reports whether the API rate limiter should be installed.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

type parser struct {
	errs []error
}

func (p *parser) check(ok bool, msg string) {
	if !ok {
		p.errs = append(p.errs, errors.New(msg))
	}
}

func (p *parser) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, v))
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
