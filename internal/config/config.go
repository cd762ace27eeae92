package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Weights  WeightsConfig  `yaml:"weights"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

// DatabaseConfig selects the project store. Postgres needs URL; SQLite
// keeps everything in a single local file at Path.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URL    string `yaml:"url"`
	Path   string `yaml:"path"`
}

// HermesConfig points at NATS. An empty URL disables event publishing.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type WeightsConfig struct {
	// CalibrationPath replaces the built-in weight matrices when set.
	CalibrationPath   string `yaml:"calibration_path"`
	RefreshIntervalMs int    `yaml:"refresh_interval_ms"`
}

type ScoringConfig struct {
	CapabilityBands scoring.CapabilityBands `yaml:"capability_bands"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RefreshInterval is how often the active weight configuration is reloaded
// from the store. Zero disables polling.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Weights.RefreshIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "govdesign.db",
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Weights: WeightsConfig{
			RefreshIntervalMs: 60000,
		},
		Scoring: ScoringConfig{
			CapabilityBands: scoring.DefaultCapabilityBands(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if err := c.Scoring.CapabilityBands.Validate(); err != nil {
		return fmt.Errorf("scoring.capability_bands: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GOVDESIGN_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("GOVDESIGN_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("GOVDESIGN_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("GOVDESIGN_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("GOVDESIGN_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("GOVDESIGN_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v, ok := os.LookupEnv("GOVDESIGN_HERMES_URL"); ok {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("GOVDESIGN_CALIBRATION_PATH"); v != "" {
		cfg.Weights.CalibrationPath = v
	}
	if v := os.Getenv("GOVDESIGN_WEIGHTS_REFRESH_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Weights.RefreshIntervalMs = n
		}
	}
	if v := os.Getenv("GOVDESIGN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GOVDESIGN_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
