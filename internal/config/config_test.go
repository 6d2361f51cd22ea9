package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []int{21}, c.Changepoint.LookbackWindows)
	assert.Equal(t, "data/quandl_cpd_%dlbw", c.Changepoint.FolderPattern)
	assert.Equal(t, 32, c.Workers)
	assert.Equal(t, 5.0, c.Features.VolThreshold)
	assert.Equal(t, 252.0, c.Features.HalflifeWinsorise)
	assert.Equal(t, 23400, c.Features.SecondsPerDay)
	assert.Equal(t, 1e-8, c.Features.MinPrice)
	assert.Equal(t, "halflife", c.Features.TrendEngine)
	assert.Equal(t, SourceCSV, c.Input.Source)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_AppliesDefaultsUnderYAML(t *testing.T) {
	path := writeConfig(t, `
input:
  path: data/prices
changepoint:
  lookback_windows: [63, 126]
features:
  seconds_per_day: 86400
workers: 4
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{63, 126}, c.Changepoint.LookbackWindows)
	assert.Equal(t, 86400, c.Features.SecondsPerDay)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, 60, c.Features.VolLookback)
	assert.Equal(t, "data/quandl_cpd_63lbw", c.CPDFolder(63))
	assert.Equal(t, filepath.Join("data", "quandl_cpd_63_126lbw.csv"), c.FeaturesFilePath())
}

func TestLoad_EmptyWindowsMeansNone(t *testing.T) {
	path := writeConfig(t, `
input:
  path: prices.csv
changepoint:
  lookback_windows: []
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, c.Changepoint.LookbackWindows)
	assert.Equal(t, filepath.Join("data", "quandl_cpd_nonelbw.csv"), c.FeaturesFilePath())
}

func TestLoad_DefaultFeaturesFile(t *testing.T) {
	c, err := Load(writeConfig(t, "input:\n  path: prices.csv\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "quandl_cpd_21lbw.csv"), c.FeaturesFilePath())

	c.Output.CSVPath = "out/features.csv"
	assert.Equal(t, "out/features.csv", c.FeaturesFilePath())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"csv source without path", "input:\n  source: csv\n"},
		{"unknown source", "input:\n  source: s3\n  path: x\n"},
		{"unknown engine", "input:\n  path: x\nfeatures:\n  trend_engine: kalman\n"},
		{"negative window", "input:\n  path: x\nchangepoint:\n  lookback_windows: [0]\n"},
		{"duplicate window", "input:\n  path: x\nchangepoint:\n  lookback_windows: [21, 21]\n"},
		{"pattern without verb", "input:\n  path: x\nchangepoint:\n  folder_pattern: data/cpd\n"},
		{"postgres without dsn", "input:\n  source: postgres\n"},
		{"clickhouse without dsn", "input:\n  path: x\noutput:\n  clickhouse: true\n"},
		{"bad log level", "input:\n  path: x\nlog:\n  level: loud\n"},
		{"malformed yaml", "input: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	path := writeConfig(t, "input:\n  source: postgres\npostgres_dsn: postgres://file\n")
	t.Setenv("POSTGRES_DSN", "postgres://env")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TICKERS", "ES,NQ")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", c.PostgresDSN)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, []string{"ES", "NQ"}, c.Input.Tickers)
}

func TestPrimitivesAndParams(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	params := c.FeatureParams()
	assert.Equal(t, 5.0, params.VolThreshold)
	assert.Equal(t, 23400, params.SecondsPerDay)

	prims, err := c.Primitives()
	require.NoError(t, err)
	assert.NotNil(t, prims)

	c.Features.TrendEngine = "indicator"
	prims, err = c.Primitives()
	require.NoError(t, err)
	assert.NotNil(t, prims)
}
