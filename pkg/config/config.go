// Package config loads run settings from, in increasing precedence: built-in
// defaults, a YAML file, a .env file and DIMENSION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/pipeline"
	"hospital_dimensioning/pkg/core/ranking"
	"hospital_dimensioning/pkg/core/variance"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config holds every setting the CLI and pipeline read.
type Config struct {
	LogLevel  string `yaml:"log_level" env:"DIMENSION_LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" env:"DIMENSION_LOG_FORMAT" validate:"oneof=json console"`

	Level      string `yaml:"level" env:"DIMENSION_LEVEL" validate:"oneof=hospital grupo regiao rede"`
	Metric     string `yaml:"metric" env:"DIMENSION_METRIC" validate:"oneof=cost quantity custo quantidade"`
	RankBy     string `yaml:"rank_by" env:"DIMENSION_RANK_BY" validate:"oneof=percent absolute"`
	Locale     string `yaml:"locale" env:"DIMENSION_LOCALE" validate:"required,bcp47_language_tag"`
	Workers    int    `yaml:"workers" env:"DIMENSION_WORKERS" validate:"min=1,max=64"`
	StartLabel string `yaml:"start_label" env:"DIMENSION_START_LABEL" validate:"required"`
	EndLabel   string `yaml:"end_label" env:"DIMENSION_END_LABEL" validate:"required"`

	StrictValidation    bool    `yaml:"strict_validation" env:"DIMENSION_STRICT_VALIDATION"`
	OutlierThresholdPct float64 `yaml:"outlier_threshold_pct" env:"DIMENSION_OUTLIER_THRESHOLD_PCT" validate:"gt=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:            "info",
		LogFormat:           "console",
		Level:               string(hierarchy.LevelNetwork),
		Metric:              "cost",
		RankBy:              string(ranking.ByAbsolute),
		Locale:              "pt-BR",
		Workers:             4,
		StartLabel:          "Baseline",
		EndLabel:            "Projetado",
		OutlierThresholdPct: 50,
	}
}

// Load builds a Config. path names an optional YAML file; envFiles are
// optional dotenv files (".env" when none are given). Missing files are
// skipped, unreadable ones are errors.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// PipelineOptions converts the settings into pipeline options.
func (c Config) PipelineOptions() (pipeline.Options, error) {
	level, err := hierarchy.ParseLevel(c.Level)
	if err != nil {
		return pipeline.Options{}, err
	}
	metric, ok := variance.ParseMetric(c.Metric)
	if !ok {
		return pipeline.Options{}, fmt.Errorf("unknown metric %q", c.Metric)
	}
	by, err := ranking.ParseBy(c.RankBy)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Level:      level,
		Metric:     metric,
		By:         by,
		Locale:     c.Locale,
		Workers:    c.Workers,
		StartLabel: c.StartLabel,
		EndLabel:   c.EndLabel,
	}, nil
}

// ValidationConfig converts the integrity settings for the pipeline.
func (c Config) ValidationConfig() pipeline.ValidationConfig {
	return pipeline.ValidationConfig{
		EnableStrictValidation: c.StrictValidation,
		OutlierThresholdPct:    c.OutlierThresholdPct,
	}
}
