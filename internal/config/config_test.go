package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30, cfg.Analysis.ShortParagraphThreshold)
	assert.Equal(t, 2.0, cfg.Batch.ZScore)
	assert.True(t, cfg.Batch.OutlierRules)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "docxscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  short_paragraph_threshold: 45
  writing_speed_wpm: 120
batch:
  outlier_rules: false
archive:
  path: /tmp/runs.db
logging:
  level: debug
  format: json
`), 0o600))
	t.Setenv("DOCX_FORENSICS_ANALYSIS_REVISION_DENSITY_WORDS", "750")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Analysis.ShortParagraphThreshold)
	assert.Equal(t, 120.0, cfg.Analysis.WritingSpeedWPM)
	assert.Equal(t, 750.0, cfg.Analysis.RevisionDensityWords)
	assert.False(t, cfg.Batch.OutlierRules)
	assert.Equal(t, "/tmp/runs.db", cfg.Archive.Path)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 750.0, cfg.Thresholds().RevisionDensityWords)
	assert.False(t, cfg.BatchOptions().Statistical)
	assert.Equal(t, 45, cfg.Calculator().ShortParagraphThreshold)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "threshold", mutate: func(c *Config) { c.Analysis.ShortParagraphThreshold = 0 }},
		{name: "iqr", mutate: func(c *Config) { c.Analysis.OutlierIQRMultiplier = -1 }},
		{name: "speed", mutate: func(c *Config) { c.Analysis.WritingSpeedWPM = 0 }},
		{name: "minutes", mutate: func(c *Config) { c.Analysis.MinWritingMinutes = -2 }},
		{name: "density", mutate: func(c *Config) { c.Analysis.RevisionDensityWords = 0 }},
		{name: "z score", mutate: func(c *Config) { c.Batch.ZScore = 0 }},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
