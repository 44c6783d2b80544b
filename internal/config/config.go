// Package config loads analysis settings from defaults, an optional YAML file and
// DOCX_FORENSICS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docx_forensics/internal/batch"
	"docx_forensics/internal/diag"
	"docx_forensics/internal/forensics"
	"docx_forensics/internal/stats"

	"github.com/spf13/viper"
)

const EnvPrefix = "DOCX_FORENSICS"

type AnalysisConfig struct {
	ShortParagraphThreshold int     `mapstructure:"short_paragraph_threshold"`
	OutlierIQRMultiplier    float64 `mapstructure:"outlier_iqr_multiplier"`
	WritingSpeedWPM         float64 `mapstructure:"writing_speed_wpm"`
	MinWritingMinutes       float64 `mapstructure:"min_writing_minutes"`
	RevisionDensityWords    float64 `mapstructure:"revision_density_words"`
}

type BatchConfig struct {
	ZScore       float64 `mapstructure:"z_score"`
	OutlierRules bool    `mapstructure:"outlier_rules"`
}

type RenderConfig struct {
	// SaltColors keys revision colors by document name as well as identifier.
	SaltColors bool `mapstructure:"salt_colors"`
}

type ArchiveConfig struct {
	// Path of the SQLite archive. Empty disables archiving.
	Path string `mapstructure:"path"`
}

type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Render   RenderConfig   `mapstructure:"render"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Logging  diag.Verbosity `mapstructure:"logging"`
}

func Default() Config {
	t := forensics.DefaultThresholds()
	return Config{
		Analysis: AnalysisConfig{
			ShortParagraphThreshold: stats.DefaultShortParagraphThreshold,
			OutlierIQRMultiplier:    t.IQRMultiplier,
			WritingSpeedWPM:         t.WritingSpeedWPM,
			MinWritingMinutes:       t.MinWritingMinutes,
			RevisionDensityWords:    t.RevisionDensityWords,
		},
		Batch: BatchConfig{
			ZScore:       batch.DefaultZScore,
			OutlierRules: true,
		},
		Render:  RenderConfig{SaltColors: true},
		Logging: diag.DefaultVerbosity(),
	}
}

// SetDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("analysis.short_paragraph_threshold", d.Analysis.ShortParagraphThreshold)
	v.SetDefault("analysis.outlier_iqr_multiplier", d.Analysis.OutlierIQRMultiplier)
	v.SetDefault("analysis.writing_speed_wpm", d.Analysis.WritingSpeedWPM)
	v.SetDefault("analysis.min_writing_minutes", d.Analysis.MinWritingMinutes)
	v.SetDefault("analysis.revision_density_words", d.Analysis.RevisionDensityWords)
	v.SetDefault("batch.z_score", d.Batch.ZScore)
	v.SetDefault("batch.outlier_rules", d.Batch.OutlierRules)
	v.SetDefault("render.salt_colors", d.Render.SaltColors)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.trace_extraction", d.Logging.TraceExtraction)
}

// Load reads path, or config.yaml from $HOME/.config/docxscan and the working
// directory when path is empty. A missing default file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docxscan"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	a := c.Analysis
	switch {
	case a.ShortParagraphThreshold <= 0:
		return fmt.Errorf("analysis.short_paragraph_threshold must be positive, got %d", a.ShortParagraphThreshold)
	case a.OutlierIQRMultiplier <= 0:
		return fmt.Errorf("analysis.outlier_iqr_multiplier must be positive, got %g", a.OutlierIQRMultiplier)
	case a.WritingSpeedWPM <= 0:
		return fmt.Errorf("analysis.writing_speed_wpm must be positive, got %g", a.WritingSpeedWPM)
	case a.MinWritingMinutes < 0:
		return fmt.Errorf("analysis.min_writing_minutes must not be negative, got %g", a.MinWritingMinutes)
	case a.RevisionDensityWords <= 0:
		return fmt.Errorf("analysis.revision_density_words must be positive, got %g", a.RevisionDensityWords)
	case c.Batch.ZScore <= 0:
		return fmt.Errorf("batch.z_score must be positive, got %g", c.Batch.ZScore)
	}
	return c.Logging.Validate()
}

func (c Config) Thresholds() forensics.Thresholds {
	return forensics.Thresholds{
		IQRMultiplier:        c.Analysis.OutlierIQRMultiplier,
		WritingSpeedWPM:      c.Analysis.WritingSpeedWPM,
		MinWritingMinutes:    c.Analysis.MinWritingMinutes,
		RevisionDensityWords: c.Analysis.RevisionDensityWords,
	}
}

func (c Config) BatchOptions() batch.Options {
	return batch.Options{ZScore: c.Batch.ZScore, Statistical: c.Batch.OutlierRules}
}

func (c Config) Calculator() stats.Calculator {
	return stats.Calculator{ShortParagraphThreshold: c.Analysis.ShortParagraphThreshold}
}
