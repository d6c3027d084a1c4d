package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/amosWeiskopf/serpsmith/internal/logging"
	"github.com/amosWeiskopf/serpsmith/pkg/tuning"
)

// Config holds all application configuration
type Config struct {
	// Analysis configuration
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`

	// Report configuration
	Report ReportConfig `mapstructure:"report" yaml:"report"`

	// Logging configuration
	Logging logging.Config `mapstructure:"logging" yaml:"logging"`

	// Engine is the scoring model. Keys left out of the file keep their
	// default values.
	Engine tuning.Model `mapstructure:"engine" yaml:"engine"`
}

// AnalysisConfig holds analyzer settings
type AnalysisConfig struct {
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
	Workers   int     `mapstructure:"workers" yaml:"workers"`
}

// ReportConfig holds report settings
type ReportConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "json", "html" or "markdown"
}

const envPrefix = "SERPSMITH"

// Load reads configuration from configPath, if given, then from the
// environment. Without a path the usual locations are searched and a
// missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("serpsmith")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.serpsmith")
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{Engine: tuning.Default()}
	// A configured curve replaces the default one instead of being merged
	// element by element.
	if v.IsSet("engine.ctr.position_curve") {
		cfg.Engine.CTR.PositionCurve = nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.Engine.CTR.PositionCurve == nil {
		cfg.Engine.CTR.PositionCurve = tuning.DefaultCTR().PositionCurve
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Threshold: tuning.DefaultAnomaly().DefaultThreshold,
			Workers:   4,
		},
		Report: ReportConfig{Format: "markdown"},
		Logging: logging.Config{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
		Engine: tuning.Default(),
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	d := Default()

	// Analysis defaults
	v.SetDefault("analysis.threshold", d.Analysis.Threshold)
	v.SetDefault("analysis.workers", d.Analysis.Workers)

	// Report defaults
	v.SetDefault("report.format", d.Report.Format)

	// Logging defaults
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if math.IsNaN(c.Analysis.Threshold) || c.Analysis.Threshold <= 0 || c.Analysis.Threshold >= 1 {
		return fmt.Errorf("analysis.threshold must be in (0, 1), got %v", c.Analysis.Threshold)
	}

	switch c.Report.Format {
	case "json", "html", "markdown", "md":
	default:
		return fmt.Errorf("report.format %q is not one of json, html, markdown", c.Report.Format)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format %q is not one of json, console", c.Logging.Format)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}
