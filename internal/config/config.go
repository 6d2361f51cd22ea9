// Package config loads the pipeline configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"momentum-feature-lab/internal/features"
	"momentum-feature-lab/internal/logging"
	"momentum-feature-lab/internal/signals"
)

var validate = validator.New()

// Input sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// KnownLookbackWindows are the window lengths change-point files are produced for.
var KnownLookbackWindows = []int{10, 21, 63, 126, 256}

// Config is the full pipeline configuration.
type Config struct {
	Changepoint   ChangepointConfig `yaml:"changepoint"`
	Features      FeaturesConfig    `yaml:"features"`
	Input         InputConfig       `yaml:"input"`
	Output        OutputConfig      `yaml:"output"`
	Log           logging.Config    `yaml:"log"`
	Workers       int               `yaml:"workers" default:"32" validate:"gte=1,lte=1024"`
	MetricsAddr   string            `yaml:"metrics_addr"`
	PostgresDSN   string            `yaml:"postgres_dsn"`
	ClickhouseDSN string            `yaml:"clickhouse_dsn"`
}

// ChangepointConfig selects the change-point inputs to merge.
type ChangepointConfig struct {
	LookbackWindows []int  `yaml:"lookback_windows" default:"[21]" validate:"dive,gte=1"`
	FolderPattern   string `yaml:"folder_pattern" default:"data/quandl_cpd_%dlbw" validate:"required"`
}

// FeaturesConfig holds the feature derivation constants.
type FeaturesConfig struct {
	VolThreshold      float64 `yaml:"vol_threshold" default:"5" validate:"gt=0"`
	HalflifeWinsorise float64 `yaml:"halflife_winsorise" default:"252" validate:"gt=0"`
	SecondsPerDay     int     `yaml:"seconds_per_day" default:"23400" validate:"gte=1"`
	MinPrice          float64 `yaml:"min_price" default:"1e-8" validate:"gte=0"`
	VolLookback       int     `yaml:"vol_lookback" default:"60" validate:"gte=1"`
	VolTarget         float64 `yaml:"vol_target" default:"0.15" validate:"gt=0"`
	TrendVolWindow    int     `yaml:"trend_vol_window" default:"63" validate:"gte=2"`
	TrendNormWindow   int     `yaml:"trend_norm_window" default:"252" validate:"gte=2"`
	TrendEngine       string  `yaml:"trend_engine" default:"halflife" validate:"oneof=halflife indicator"`
}

// InputConfig selects where price ticks come from.
type InputConfig struct {
	Source  string   `yaml:"source" default:"csv" validate:"oneof=csv postgres"`
	Path    string   `yaml:"path" validate:"required_if=Source csv"`
	Tickers []string `yaml:"tickers"`
}

// OutputConfig selects where the feature table goes.
type OutputConfig struct {
	CSVPath    string `yaml:"csv_path"`
	ReportPath string `yaml:"report_path"`
	ClickHouse bool   `yaml:"clickhouse"`
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides connection settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		c.ClickhouseDSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("TICKERS"); v != "" {
		c.Input.Tickers = strings.Split(v, ",")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Input.Source == SourcePostgres && c.PostgresDSN == "" {
		return errors.New("postgres_dsn is required when input.source is postgres")
	}
	if c.Output.ClickHouse && c.ClickhouseDSN == "" {
		return errors.New("clickhouse_dsn is required when output.clickhouse is set")
	}
	if strings.Count(c.Changepoint.FolderPattern, "%d") != 1 {
		return fmt.Errorf("changepoint.folder_pattern must contain exactly one %%d, got %q", c.Changepoint.FolderPattern)
	}
	seen := make(map[int]bool, len(c.Changepoint.LookbackWindows))
	for _, l := range c.Changepoint.LookbackWindows {
		if seen[l] {
			return fmt.Errorf("changepoint.lookback_windows: duplicate window %d", l)
		}
		seen[l] = true
	}
	return nil
}

// CPDFolder returns the change-point folder for a lookback window.
func (c *Config) CPDFolder(lookbackWindow int) string {
	return fmt.Sprintf(c.Changepoint.FolderPattern, lookbackWindow)
}

// FeaturesFilePath returns the feature CSV path: the configured one, or
// data/quandl_cpd_<L>lbw.csv derived from the lookback windows.
func (c *Config) FeaturesFilePath() string {
	if c.Output.CSVPath != "" {
		return c.Output.CSVPath
	}
	suffix := "none"
	if len(c.Changepoint.LookbackWindows) > 0 {
		parts := make([]string, len(c.Changepoint.LookbackWindows))
		for i, l := range c.Changepoint.LookbackWindows {
			parts[i] = strconv.Itoa(l)
		}
		suffix = strings.Join(parts, "_")
	}
	return filepath.Join("data", fmt.Sprintf("quandl_cpd_%slbw.csv", suffix))
}

// FeatureParams returns the assembler constants.
func (c *Config) FeatureParams() features.Params {
	return features.Params{
		VolThreshold:      c.Features.VolThreshold,
		HalflifeWinsorise: c.Features.HalflifeWinsorise,
		MinPrice:          c.Features.MinPrice,
		SecondsPerDay:     c.Features.SecondsPerDay,
	}
}

// Primitives builds the numeric primitives for the configured trend engine.
func (c *Config) Primitives() (signals.Primitives, error) {
	return signals.New(c.Features.TrendEngine, signals.Options{
		VolLookback:     c.Features.VolLookback,
		VolTarget:       c.Features.VolTarget,
		Annualization:   252 * float64(c.Features.SecondsPerDay),
		TrendVolWindow:  c.Features.TrendVolWindow,
		TrendNormWindow: c.Features.TrendNormWindow,
	})
}
