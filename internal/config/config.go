package config

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the server configuration, read from the environment.
type Config struct {
	Port            string
	DatabaseURL     string
	SQLitePath      string
	LogLevel        slog.Level
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		Port:            "8080",
		SQLitePath:      "treetodo.db",
		LogLevel:        slog.LevelInfo,
		LogFormat:       "text",
		ShutdownTimeout: 30 * time.Second,
	}
}

// Load reads configuration from environment variables,
// falling back to defaults for any unset or invalid values.
func Load() Config {
	cfg := Default()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.SQLitePath = getEnv("TREETODO_DB", cfg.SQLitePath)
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			cfg.LogLevel = lvl
		} else {
			log.Printf("Warning: invalid LOG_LEVEL %q, using %s", v, cfg.LogLevel)
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg
}

// UsePostgres reports whether DATABASE_URL selects the Postgres store.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// NewLogger builds the structured logger selected by LogLevel and LogFormat.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// APIBase returns the base URL clients talk to.
func APIBase() string {
	for _, key := range []string{"TREETODO_API", "API_BASE"} {
		if v := os.Getenv(key); v != "" {
			if !strings.HasSuffix(v, "/") {
				v += "/"
			}
			return v
		}
	}
	return "http://localhost:8080/"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
