// Package config loads server settings from YAML, .env files and the
// environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendXLSX   = "xlsx"
	BackendMemory = "memory"
)

// Config holds all server configuration.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Store    StoreConfig   `yaml:"store"`
	Leave    LeaveConfig   `yaml:"leave"`
	Outliers OutlierConfig `yaml:"outliers"`
	Logging  LoggingConfig `yaml:"logging"`
	Timezone string        `yaml:"timezone"` // decides what "today" is
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StoreConfig selects and configures the table backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"` // sqlite, xlsx, memory
	Path     string `yaml:"path"`
	CacheTTL string `yaml:"cache_ttl"` // e.g. "3m"; "0" disables the cache
}

// LeaveConfig configures the leave ledger.
type LeaveConfig struct {
	DefaultBalance int `yaml:"default_balance"`
}

// OutlierConfig configures the outlier query.
type OutlierConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Store: StoreConfig{
			Backend:  BackendSQLite,
			Path:     "parade.db",
			CacheTTL: "3m",
		},
		Leave:    LeaveConfig{DefaultBalance: 14},
		Outliers: OutlierConfig{SimilarityThreshold: 0.6},
		Logging:  LoggingConfig{Level: "info"},
		Timezone: "UTC",
	}
}

// Load reads path (optional; "" skips it), then any .env file in the working
// directory, then PARADE_* environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PARADE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PARADE_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PARADE_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("PARADE_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("PARADE_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PARADE_CACHE_TTL"); v != "" {
		c.Store.CacheTTL = v
	}
	if v := os.Getenv("PARADE_DEFAULT_LEAVE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PARADE_DEFAULT_LEAVE %q: %w", v, err)
		}
		c.Leave.DefaultBalance = n
	}
	if v := os.Getenv("PARADE_SIMILARITY_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PARADE_SIMILARITY_THRESHOLD %q: %w", v, err)
		}
		c.Outliers.SimilarityThreshold = f
	}
	if v := os.Getenv("PARADE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PARADE_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite, BackendXLSX, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Outliers.SimilarityThreshold <= 0 || c.Outliers.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.Outliers.SimilarityThreshold)
	}
	if c.Leave.DefaultBalance < 0 {
		return fmt.Errorf("default leave balance must not be negative, got %d", c.Leave.DefaultBalance)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// CacheTTL parses Store.CacheTTL. Zero disables caching.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Store.CacheTTL == "" || c.Store.CacheTTL == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Store.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache_ttl %q: %w", c.Store.CacheTTL, err)
	}
	return d, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
