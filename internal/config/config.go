// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported values for DBDriver and CacheBackend.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	CacheValkey = "valkey"
	CacheMemory = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	Env      string // "development", "production", "testing"
	LogLevel string // "debug", "info", "warn", "error"

	// SiteID is the site the CLI operates on when none is given.
	SiteID string

	// Storage
	DBDriver   string // "postgres" or "sqlite3"
	SQLitePath string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Metadata cache backend
	CacheBackend string // "valkey" or "memory"

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// MetaInheritFromRoot lets pass-down values on the root category reach descendants.
	MetaInheritFromRoot bool
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
		slog.Debug("environment loaded", "file", f)
	}
	return nil
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      envOrDefault("APP_ENV", "development"),
		LogLevel: envOrDefault("LOG_LEVEL", "info"),
		SiteID:   envOrDefault("SITE_ID", "default"),

		DBDriver:   envOrDefault("DB_DRIVER", DriverPostgres),
		SQLitePath: envOrDefault("SQLITE_PATH", "taxonomy.db"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "taxonomy"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "taxonomy"),

		CacheBackend: envOrDefault("CACHE_BACKEND", CacheValkey),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	inherit, err := envBool("META_INHERIT_FROM_ROOT", false)
	if err != nil {
		return nil, err
	}
	cfg.MetaInheritFromRoot = inherit

	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.DBDriver)
	}
	switch cfg.CacheBackend {
	case CacheValkey, CacheMemory:
	default:
		return nil, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheValkey, CacheMemory, cfg.CacheBackend)
	}

	if cfg.Env == "production" {
		if cfg.DBDriver == DriverPostgres && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return SQLiteDSN(c.SQLitePath)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPassword), c.DBHost, c.DBPort, c.DBName,
	)
}

// SQLiteDSN returns a go-sqlite3 DSN for path with foreign keys enforced.
// Use ":memory:" for a private in-memory database.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// ValkeyAddr returns the Valkey address (host:port).
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
