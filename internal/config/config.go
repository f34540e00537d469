package config

import (
	"os"
	"strconv"

	"modelrank/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
	Ranking  RankingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds data ingestion settings
type DataConfig struct {
	DatasetFile string
}

// RankingConfig holds model comparison defaults
type RankingConfig struct {
	Criterion       string
	ConfidenceLevel float64
	SweepWorkers    int
}

// Load builds the configuration from environment variables.
// Callers are expected to have loaded .env (godotenv) beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    envOr("PORT", "8080"),
			GinMode: envOr("GIN_MODE", "release"),
		},
		Data: DataConfig{
			DatasetFile: os.Getenv("DATASET_FILE"),
		},
		Ranking: RankingConfig{
			Criterion:       envOr("RANKING_CRITERION", "aicc"),
			ConfidenceLevel: envFloatOr("RANKING_CONFIDENCE_LEVEL", 0.95),
			SweepWorkers:    envIntOr("SWEEP_WORKERS", 4),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	if c.Ranking.ConfidenceLevel <= 0 || c.Ranking.ConfidenceLevel > 1 {
		return errors.ConfigInvalid("RANKING_CONFIDENCE_LEVEL must be in (0, 1]")
	}
	if c.Ranking.SweepWorkers < 1 {
		return errors.ConfigInvalid("SWEEP_WORKERS must be >= 1")
	}
	switch c.Ranking.Criterion {
	case "aic", "aicc", "bic":
	default:
		return errors.ConfigInvalid("RANKING_CRITERION must be one of aic, aicc, bic")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
