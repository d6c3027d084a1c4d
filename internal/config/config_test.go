package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serpsmith.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileOverridesEngine(t *testing.T) {
	path := writeConfig(t, `
analysis:
  threshold: 0.3
  workers: 2
report:
  format: html
logging:
  level: debug
  format: json
engine:
  gap:
    volume_ceiling: 5000
  ctr:
    position_curve: [0.3, 0.2, 0.1]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Analysis.Threshold)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, "html", cfg.Report.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5000.0, cfg.Engine.Gap.VolumeCeiling)
	assert.Equal(t, tuning.DefaultGap().ClicksCeiling, cfg.Engine.Gap.ClicksCeiling)
	assert.Equal(t, []float64{0.3, 0.2, 0.1}, cfg.Engine.CTR.PositionCurve)
	assert.Equal(t, tuning.DefaultDifficulty(), cfg.Engine.Difficulty)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERPSMITH_ANALYSIS_WORKERS", "9")
	t.Setenv("SERPSMITH_REPORT_FORMAT", "json")

	cfg, err := Load(writeConfig(t, "analysis:\n  workers: 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Analysis.Workers)
	assert.Equal(t, "json", cfg.Report.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"workers", "analysis:\n  workers: 0\n"},
		{"threshold", "analysis:\n  threshold: 1.5\n"},
		{"threshold of one", "analysis:\n  threshold: 1\n"},
		{"zero threshold", "analysis:\n  threshold: 0\n"},
		{"report format", "report:\n  format: pdf\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"rising curve", "engine:\n  ctr:\n    position_curve: [0.1, 0.2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
