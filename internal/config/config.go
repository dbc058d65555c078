package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"waymark/internal/model"
)

const (
	DefaultPath = "waymark.yaml"
	DefaultDSN  = "sqlite://.waymark/waymark.db"
)

var DefaultPatterns = []string{"stories/**/*.json", "stories/**/*.yaml", "stories/**/*.yml"}

var (
	logLevels  = []string{"trace", "debug", "info", "warn", "error"}
	logFormats = []string{"console", "json"}
)

type ProjectConfig struct {
	Project string        `yaml:"project"`
	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Import  ImportConfig  `yaml:"import"`
	Bounds  BoundsConfig  `yaml:"bounds"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn" env:"WAYMARK_DSN"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"WAYMARK_LOG_LEVEL"`
	Format string `yaml:"format" env:"WAYMARK_LOG_FORMAT"`
}

type ImportConfig struct {
	Patterns []string `yaml:"patterns"`
	Exclude  []string `yaml:"exclude"`
}

type BoundsConfig struct {
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
}

// Model returns the location bounds, falling back to model.DefaultBounds for
// unset limits.
func (b BoundsConfig) Model() model.Bounds {
	bounds := model.DefaultBounds
	if b.MinRadius > 0 {
		bounds.MinRadius = b.MinRadius
	}
	if b.MaxRadius > 0 {
		bounds.MaxRadius = b.MaxRadius
	}
	return bounds
}

// LoadProjectConfig reads a project file, fills defaults, applies WAYMARK_*
// environment overrides and validates the result.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyDefaults(&cfg)
	if err := ParseEnv(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		cfg.Storage.DSN = DefaultDSN
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if len(cfg.Import.Patterns) == 0 {
		cfg.Import.Patterns = append([]string(nil), DefaultPatterns...)
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if !isSupportedDSN(cfg.Storage.DSN) {
		return fmt.Errorf("unsupported storage dsn: %s", cfg.Storage.DSN)
	}
	if !contains(logLevels, strings.ToLower(cfg.Log.Level)) {
		return fmt.Errorf("unsupported log level: %s", cfg.Log.Level)
	}
	if !contains(logFormats, strings.ToLower(cfg.Log.Format)) {
		return fmt.Errorf("unsupported log format: %s", cfg.Log.Format)
	}

	for i, pattern := range cfg.Import.Patterns {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("import pattern %d is empty", i)
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid import pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Import.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	if cfg.Bounds.MinRadius < 0 || cfg.Bounds.MaxRadius < 0 {
		return fmt.Errorf("radius bounds must not be negative")
	}
	bounds := cfg.Bounds.Model()
	if bounds.MinRadius > bounds.MaxRadius {
		return fmt.Errorf("min_radius %v exceeds max_radius %v", bounds.MinRadius, bounds.MaxRadius)
	}

	return nil
}

// Backend returns "sqlite" or "postgres" for a supported dsn.
func Backend(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	}
	return ""
}

func isSupportedDSN(dsn string) bool {
	return Backend(strings.TrimSpace(dsn)) != ""
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
