package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConcurrency = 8
	DefaultSlotTimeout = 30 * time.Second
	DefaultModel       = "opensmile"
	DefaultRulesPath   = "emotion_scoring_rules.yaml"
)

var models = []string{"opensmile", "emotion4", "emotion8"}

type ProjectConfig struct {
	Project     string            `yaml:"project"`
	Version     int               `yaml:"version"`
	Database    DatabaseConfig    `yaml:"database"`
	Model       string            `yaml:"model" env:"EMOTIONAGG_MODEL"`
	Rules       string            `yaml:"rules" env:"EMOTIONAGG_RULES"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"EMOTIONAGG_DATABASE_DSN"`
}

type AggregationConfig struct {
	Concurrency       int           `yaml:"concurrency" env:"EMOTIONAGG_CONCURRENCY"`
	SlotTimeout       time.Duration `yaml:"slot_timeout" env:"EMOTIONAGG_SLOT_TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"EMOTIONAGG_REQUESTS_PER_SECOND"`
}

type LoggingConfig struct {
	Level       string `yaml:"level" env:"EMOTIONAGG_LOG_LEVEL"`
	Development bool   `yaml:"development" env:"EMOTIONAGG_LOG_DEVELOPMENT"`
}

// LoadProjectConfig reads the YAML config at path, applies environment
// overrides and defaults, then validates the result. A relative rules path
// is resolved against the config file's directory.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if !filepath.IsAbs(cfg.Rules) {
		cfg.Rules = filepath.Join(filepath.Dir(path), cfg.Rules)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	cfg.Model = strings.ToLower(strings.TrimSpace(cfg.Model))
	if strings.TrimSpace(cfg.Rules) == "" {
		cfg.Rules = DefaultRulesPath
	}
	if cfg.Aggregation.Concurrency == 0 {
		cfg.Aggregation.Concurrency = DefaultConcurrency
	}
	if cfg.Aggregation.SlotTimeout == 0 {
		cfg.Aggregation.SlotTimeout = DefaultSlotTimeout
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !validModel(cfg.Model) {
		return fmt.Errorf("unknown model %q (expected one of %s)", cfg.Model, strings.Join(models, ", "))
	}
	if cfg.Aggregation.Concurrency < 1 || cfg.Aggregation.Concurrency > 48 {
		return fmt.Errorf("aggregation concurrency must be between 1 and 48, got %d", cfg.Aggregation.Concurrency)
	}
	if cfg.Aggregation.SlotTimeout < 0 {
		return fmt.Errorf("aggregation slot_timeout must not be negative")
	}
	if cfg.Aggregation.RequestsPerSecond < 0 {
		return fmt.Errorf("aggregation requests_per_second must not be negative")
	}
	return nil
}

func validModel(model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}
