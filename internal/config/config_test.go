package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "data/bronze", cfg.Paths.Bronze)
	assert.Equal(t, "data/silver", cfg.Paths.Silver)
	assert.Equal(t, "data/gold", cfg.Paths.Gold)
	assert.Equal(t, "collisions_raw.csv", cfg.Sources.Collisions.Filename)
	assert.Equal(t, "https://date.nager.at/api/v3/PublicHolidays", cfg.Sources.Holidays.BaseURL)
	assert.Equal(t, "US", cfg.Sources.Holidays.Country)
	assert.Equal(t, "holidays_raw.json", cfg.Sources.Holidays.Filename)
	assert.Equal(t, "weather_raw.csv", cfg.Sources.Weather.Filename)
	assert.Equal(t, "US", cfg.Pipeline.Jurisdiction)
	assert.Equal(t, 0, cfg.Pipeline.MinYear)
	assert.Equal(t, 0.25, cfg.Pipeline.RainThresholdMM)
	assert.Equal(t, 50.0, cfg.Pipeline.SeverePrecipMM)
	assert.Equal(t, 17.2, cfg.Pipeline.SevereWindMPS)
	assert.Equal(t, []int{6, 12, 18}, cfg.Pipeline.TimeWindowBoundaries)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
}

func TestLoad_FileOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
paths:
  bronze: /tmp/bronze
sources:
  collisions:
    url: https://example.test/collisions.csv
  holidays:
    country: GB
    years: [2023, 2024]
  weather:
    station: USW00094728
pipeline:
  jurisdiction: GB
  min_year: 2013
  rain_threshold_mm: 1.5
  time_window_boundaries: [5, 11, 17]
log:
  level: debug
  format: text
metrics:
  pushgateway_url: http://pushgateway:9091
`))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/bronze", cfg.Paths.Bronze)
	assert.Equal(t, "data/silver", cfg.Paths.Silver)
	assert.Equal(t, "https://example.test/collisions.csv", cfg.Sources.Collisions.URL)
	assert.Equal(t, "GB", cfg.Sources.Holidays.Country)
	assert.Equal(t, []int{2023, 2024}, cfg.Sources.Holidays.Years)
	assert.Equal(t, "USW00094728", cfg.Sources.Weather.Station)
	assert.Equal(t, "GB", cfg.Pipeline.Jurisdiction)
	assert.Equal(t, 2013, cfg.Pipeline.MinYear)
	assert.Equal(t, 1.5, cfg.Pipeline.RainThresholdMM)
	assert.Equal(t, []int{5, 11, 17}, cfg.Pipeline.TimeWindowBoundaries)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
}

func TestLoad_JurisdictionFollowsHolidayCountry(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sources:
  holidays:
    country: DE
`))
	require.NoError(t, err)
	assert.Equal(t, "DE", cfg.Pipeline.Jurisdiction)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("PUSHGATEWAY_URL", "http://push.example.test:9091")

	cfg, err := Load(writeConfig(t, `
log:
  level: error
metrics:
  pushgateway_url: http://from-file:9091
`))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "http://push.example.test:9091", cfg.Metrics.PushgatewayURL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		option string
	}{
		{
			name:   "unknown log level",
			yaml:   "log:\n  level: loud\n",
			option: "log.level",
		},
		{
			name:   "unknown log format",
			yaml:   "log:\n  format: xml\n",
			option: "log.format",
		},
		{
			name:   "negative rain threshold",
			yaml:   "pipeline:\n  rain_threshold_mm: -0.5\n",
			option: "rain_threshold_mm",
		},
		{
			name:   "severe precip below rain threshold",
			yaml:   "pipeline:\n  rain_threshold_mm: 10\n  severe_precip_mm: 5\n",
			option: "severe_precip_mm",
		},
		{
			name:   "negative severe wind",
			yaml:   "pipeline:\n  severe_wind_mps: -1\n",
			option: "severe_wind_mps",
		},
		{
			name:   "negative min year",
			yaml:   "pipeline:\n  min_year: -2013\n",
			option: "min_year",
		},
		{
			name:   "implausible holiday year",
			yaml:   "sources:\n  holidays:\n    years: [202]\n",
			option: "sources.holidays.years",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)

			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.option, cfgErr.Option)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "paths: [not a mapping"))
	assert.Error(t, err)
}
