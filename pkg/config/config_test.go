package config

import (
	"os"
	"path/filepath"
	"testing"

	"hospital_dimensioning/pkg/core/hierarchy"
	"hospital_dimensioning/pkg/core/ranking"
	"hospital_dimensioning/pkg/core/variance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func noDotEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, "dimension.yaml", `
level: hospital
metric: quantity
rank_by: percent
workers: 8
`)
	t.Setenv("DIMENSION_WORKERS", "2")

	cfg, err := Load(path, noDotEnv(t))
	require.NoError(t, err)
	assert.Equal(t, "hospital", cfg.Level)
	assert.Equal(t, "quantity", cfg.Metric)
	assert.Equal(t, 2, cfg.Workers, "environment wins over the file")
	assert.Equal(t, "pt-BR", cfg.Locale, "unset keys keep their default")
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "DIMENSION_END_LABEL=Meta 2025\n")
	t.Cleanup(func() { os.Unsetenv("DIMENSION_END_LABEL") })

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, "Meta 2025", cfg.EndLabel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "unknown level", yaml: "level: planeta\n"},
		{name: "zero workers", yaml: "workers: 0\n"},
		{name: "bad locale", env: map[string]string{"DIMENSION_LOCALE": "not a tag"}},
		{name: "bad log level", env: map[string]string{"DIMENSION_LOG_LEVEL": "loud"}},
		{name: "malformed yaml", yaml: "level: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, "c.yaml", tt.yaml)
			}
			_, err := Load(path, noDotEnv(t))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), noDotEnv(t))
	assert.Error(t, err)
}

func TestPipelineOptions(t *testing.T) {
	cfg := Default()
	cfg.Level = "grupo"
	cfg.Metric = "quantidade"
	cfg.RankBy = "percent"

	opts, err := cfg.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, hierarchy.LevelGroup, opts.Level)
	assert.Equal(t, variance.MetricQuantity, opts.Metric)
	assert.Equal(t, ranking.ByPercent, opts.By)
	assert.Equal(t, 4, opts.Workers)

	cfg.StrictValidation = true
	assert.True(t, cfg.ValidationConfig().EnableStrictValidation)
	assert.Equal(t, 50.0, cfg.ValidationConfig().OutlierThresholdPct)
}
