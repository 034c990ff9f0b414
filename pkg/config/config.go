// Package config loads trend-engine configuration from an optional YAML
// file with environment variable overrides. Secrets only come from the
// environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read when present; environment variables always win.
const DefaultConfigFile = "config.yaml"

// Config holds all configuration for trend-engine.
type Config struct {
	// Server configuration for the operational endpoints (health, metrics).
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Database    DatabaseConfig    `yaml:"database"`
	Sources     SourcesConfig     `yaml:"sources"`
	Aggregation AggregationConfig `yaml:"aggregation"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"trend"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"trend_engine"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
}

// URL renders the connection string consumed by pgx and the migration
// runner.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// SourcesConfig describes the acquisition side as the engine sees it: an
// allowlist and an adapter count, used only for the diversity denominator.
type SourcesConfig struct {
	// AllowlistStr is a comma-separated list of enabled source identifiers.
	AllowlistStr string `yaml:"allowlist" env:"SOURCE_ALLOWLIST" env-default:""`

	// Allowlist is parsed from AllowlistStr at load time.
	Allowlist []string `yaml:"-"`

	// AdapterCount is the number of source adapters the acquisition
	// subsystem ships with, used as a fallback denominator when no
	// allowlist is configured.
	AdapterCount int `yaml:"adapter_count" env:"SOURCE_ADAPTER_COUNT" env-default:"9"`
}

// ConfiguredSourceCount returns the diversity denominator: the configured
// allowlist size, falling back to the adapter count, floored at 1.
func (s SourcesConfig) ConfiguredSourceCount() int {
	count := len(s.Allowlist)
	if count == 0 {
		count = s.AdapterCount
	}
	if count < 1 {
		count = 1
	}
	return count
}

// AggregationConfig holds scheduling and retention settings for the
// aggregation run.
type AggregationConfig struct {
	// IntervalMinutes is how often the scheduler loop triggers a run.
	IntervalMinutes int `yaml:"interval_minutes" env:"AGGREGATION_INTERVAL_MINUTES" env-default:"15"`

	// RetentionDays is the horizon after which snapshot and ranking rows
	// are purged.
	RetentionDays int `yaml:"retention_days" env:"RETENTION_DAYS" env-default:"730"`
}

// Load reads configuration from DefaultConfigFile when it exists, otherwise
// from the environment alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		if err := cleanenv.ReadConfig(DefaultConfigFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", DefaultConfigFile, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Sources.Allowlist = splitCSV(cfg.Sources.AllowlistStr)

	if cfg.Aggregation.IntervalMinutes <= 0 {
		return nil, fmt.Errorf("aggregation interval must be positive, got %d", cfg.Aggregation.IntervalMinutes)
	}
	if cfg.Aggregation.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention days must be positive, got %d", cfg.Aggregation.RetentionDays)
	}

	return cfg, nil
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
