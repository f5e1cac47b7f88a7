package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Detector.BlurRadius)
	assert.Equal(t, 10.0, cfg.Clusterer.Tolerance)
	assert.Equal(t, 0.5, cfg.Dimensions.MinValue)
	assert.Equal(t, 30*time.Second, cfg.Dimensions.Timeout)
	assert.Equal(t, 0.01, cfg.Scale.Fallback)
	assert.True(t, cfg.Dimensions.Enabled)
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
detector:
  canny_low: 30
  hough_threshold: 60
clusterer:
  tolerance: 6
dimensions:
  comma_decimal: true
  timeout: 5s
  binarize_level: 140
server:
  batch_concurrency: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30.0, cfg.Detector.CannyLow)
	assert.Equal(t, 150.0, cfg.Detector.CannyHigh, "unset keys keep defaults")
	assert.Equal(t, 60, cfg.Detector.HoughThreshold)
	assert.Equal(t, 6.0, cfg.Clusterer.Tolerance)
	assert.True(t, cfg.Dimensions.CommaDecimal)
	assert.Equal(t, 0.5, cfg.Dimensions.MinValue)
	assert.Equal(t, 5*time.Second, cfg.Dimensions.Timeout)
	assert.Equal(t, uint8(140), cfg.Dimensions.BinarizeLevel)
	assert.Equal(t, 2, cfg.Server.BatchConcurrency)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "detector: [not, a, map]"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "detector:\n  blur_radius: 4\n"))
	assert.ErrorContains(t, err, "blur_radius")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"tolerance", func(c *Config) { c.Clusterer.Tolerance = -1 }, "clusterer.tolerance"},
		{"min value", func(c *Config) { c.Dimensions.MinValue = -1 }, "dimensions.min_value"},
		{"language", func(c *Config) { c.Dimensions.Language = "" }, "dimensions.language"},
		{"fallback", func(c *Config) { c.Scale.Fallback = 0 }, "scale.fallback"},
		{"concurrency", func(c *Config) { c.Server.BatchConcurrency = 0 }, "server.batch_concurrency"},
		{"detector", func(c *Config) { c.Detector.CannyLow = 500 }, "detector"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARN")
	t.Setenv(EnvOCRLanguage, "eng+por")
	t.Setenv(EnvOCRTimeout, "45s")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
	assert.Equal(t, "eng+por", cfg.Dimensions.Language)
	assert.Equal(t, 45*time.Second, cfg.Dimensions.Timeout)
	assert.Equal(t, "eng+por", cfg.OCROptions().Language)
}

func TestApplyEnv_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvOCRTimeout, "soon")
	assert.Error(t, Default().ApplyEnv())
}
