// Package config loads blueprint-mcp settings from YAML and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/blueprint-tools-mcp/internal/detection"
	"github.com/ironsheep/blueprint-tools-mcp/internal/dimension"
	"github.com/ironsheep/blueprint-tools-mcp/internal/geometry"
	"github.com/ironsheep/blueprint-tools-mcp/internal/ocr"
	"github.com/ironsheep/blueprint-tools-mcp/internal/scale"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "BLUEPRINT_MCP_LOG_LEVEL"
	EnvOCRLanguage = "BLUEPRINT_MCP_OCR_LANGUAGE"
	EnvOCRTimeout  = "BLUEPRINT_MCP_OCR_TIMEOUT"
)

// Config holds the full blueprint-mcp configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Detector   detection.Params `yaml:"detector"`
	Clusterer  ClustererConfig  `yaml:"clusterer"`
	Dimensions DimensionsConfig `yaml:"dimensions"`
	Scale      ScaleConfig      `yaml:"scale"`
	Server     ServerConfig     `yaml:"server"`
}

// ClustererConfig configures endpoint merging.
type ClustererConfig struct {
	Tolerance float64 `yaml:"tolerance"` // pixels
}

// DimensionsConfig configures text recognition and label parsing.
type DimensionsConfig struct {
	dimension.Options `yaml:",inline"`

	Enabled     bool   `yaml:"enabled"`
	Language    string `yaml:"language"`
	PageSegMode int    `yaml:"page_seg_mode"`
}

// ScaleConfig configures the scale estimator.
type ScaleConfig struct {
	Fallback float64 `yaml:"fallback"` // metres per pixel
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Name             string `yaml:"name"`
	BatchConcurrency int    `yaml:"batch_concurrency"`
	OverlayMaxSide   int    `yaml:"overlay_max_side"`
}

// Default returns sane defaults.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Detector:  detection.DefaultParams(),
		Clusterer: ClustererConfig{Tolerance: geometry.DefaultTolerance},
		Dimensions: DimensionsConfig{
			Options:     dimension.DefaultOptions(),
			Enabled:     true,
			Language:    "eng",
			PageSegMode: int(ocr.PageSegSingleBlock),
		},
		Scale: ScaleConfig{Fallback: float64(scale.Fallback)},
		Server: ServerConfig{
			Name:             "blueprint-mcp",
			BatchConcurrency: 4,
			OverlayMaxSide:   1600,
		},
	}
}

// Load reads and parses a YAML config file. Returns Default merged with the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from BLUEPRINT_MCP_* environment variables.
// Unset or empty variables leave the config unchanged.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv(EnvOCRLanguage); v != "" {
		c.Dimensions.Language = v
	}
	if v := os.Getenv(EnvOCRTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", EnvOCRTimeout, v, err)
		}
		c.Dimensions.Timeout = d
	}
	return nil
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	if c.Clusterer.Tolerance < 0 {
		return fmt.Errorf("clusterer.tolerance must be >= 0")
	}
	if c.Dimensions.MinValue < 0 {
		return fmt.Errorf("dimensions.min_value must be >= 0")
	}
	if c.Dimensions.Timeout < 0 {
		return fmt.Errorf("dimensions.timeout must be >= 0")
	}
	if c.Dimensions.Enabled && c.Dimensions.Language == "" {
		return fmt.Errorf("dimensions.language is required when OCR is enabled")
	}
	if c.Scale.Fallback <= 0 {
		return fmt.Errorf("scale.fallback must be > 0")
	}
	if c.Server.BatchConcurrency < 1 {
		return fmt.Errorf("server.batch_concurrency must be >= 1")
	}
	if c.Server.OverlayMaxSide < 0 {
		return fmt.Errorf("server.overlay_max_side must be >= 0")
	}
	return nil
}

// SlogLevel returns the configured log level. Invalid values map to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// OCROptions returns the recognizer options for the dimensions section.
func (c *Config) OCROptions() ocr.Options {
	opts := ocr.DefaultOptions()
	opts.Language = c.Dimensions.Language
	if c.Dimensions.PageSegMode != 0 {
		opts.PageSegMode = ocr.PageSegMode(c.Dimensions.PageSegMode)
	}
	return opts
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log_level %q (use debug, info, warn or error)", s)
	}
}
