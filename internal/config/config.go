// Package config loads pipeline settings from a YAML file, applies
// defaults and environment overrides, and validates the result. Validation
// failures are ConfigurationErrors: the run aborts before any stage
// touches data.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Rabbins/nyc-use-case/internal/domain"
)

// Config holds all pipeline settings.
type Config struct {
	Paths    Paths    `yaml:"paths"`
	Sources  Sources  `yaml:"sources"`
	Pipeline Pipeline `yaml:"pipeline"`
	Log      Log      `yaml:"log"`
	Metrics  Metrics  `yaml:"metrics"`
}

// Paths are the working directories for the three data tiers.
type Paths struct {
	Bronze string `yaml:"bronze"`
	Silver string `yaml:"silver"`
	Gold   string `yaml:"gold"`
}

// Sources configures where each raw dataset comes from and the Bronze
// filename it is cached under.
type Sources struct {
	Collisions FileSource    `yaml:"collisions"`
	Holidays   HolidaySource `yaml:"holidays"`
	Weather    WeatherSource `yaml:"weather"`
}

// FileSource is a plain downloadable file.
type FileSource struct {
	URL      string `yaml:"url"`
	Filename string `yaml:"filename"`
}

// HolidaySource configures the per-year holiday API fetch.
type HolidaySource struct {
	BaseURL  string `yaml:"base_url"`
	Country  string `yaml:"country"`
	Years    []int  `yaml:"years"`
	Filename string `yaml:"filename"`
}

// WeatherSource is the GHCN-Daily CSV, optionally filtered to one station.
type WeatherSource struct {
	URL      string `yaml:"url"`
	Filename string `yaml:"filename"`
	Station  string `yaml:"station"`
}

// Pipeline holds the cleaning and classification knobs.
type Pipeline struct {
	Jurisdiction         string  `yaml:"jurisdiction"`
	MinYear              int     `yaml:"min_year"`
	RainThresholdMM      float64 `yaml:"rain_threshold_mm"`
	SeverePrecipMM       float64 `yaml:"severe_precip_mm"`
	SevereWindMPS        float64 `yaml:"severe_wind_mps"`
	TimeWindowBoundaries []int   `yaml:"time_window_boundaries"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures metric egress. An empty Pushgateway URL disables the
// end-of-run push.
type Metrics struct {
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// Load reads and validates the configuration file. Environment variables
// LOG_LEVEL, LOG_FORMAT, and PUSHGATEWAY_URL override the file for
// operational tuning without editing checked-in config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaultStr(&c.Paths.Bronze, "data/bronze")
	defaultStr(&c.Paths.Silver, "data/silver")
	defaultStr(&c.Paths.Gold, "data/gold")

	defaultStr(&c.Sources.Collisions.Filename, "collisions_raw.csv")
	defaultStr(&c.Sources.Holidays.BaseURL, "https://date.nager.at/api/v3/PublicHolidays")
	defaultStr(&c.Sources.Holidays.Country, "US")
	defaultStr(&c.Sources.Holidays.Filename, "holidays_raw.json")
	defaultStr(&c.Sources.Weather.Filename, "weather_raw.csv")

	defaultStr(&c.Pipeline.Jurisdiction, c.Sources.Holidays.Country)
	if c.Pipeline.RainThresholdMM == 0 {
		c.Pipeline.RainThresholdMM = 0.25
	}
	if c.Pipeline.SeverePrecipMM == 0 {
		c.Pipeline.SeverePrecipMM = 50.0
	}
	if c.Pipeline.SevereWindMPS == 0 {
		c.Pipeline.SevereWindMPS = 17.2
	}
	if len(c.Pipeline.TimeWindowBoundaries) == 0 {
		c.Pipeline.TimeWindowBoundaries = []int{6, 12, 18}
	}

	defaultStr(&c.Log.Level, "info")
	defaultStr(&c.Log.Format, "json")
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("PUSHGATEWAY_URL"); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

func (c *Config) validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ConfigurationError{Option: "log.level", Reason: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return &domain.ConfigurationError{Option: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}

	if c.Pipeline.RainThresholdMM < 0 {
		return &domain.ConfigurationError{Option: "rain_threshold_mm", Reason: "must not be negative"}
	}
	if c.Pipeline.SeverePrecipMM <= c.Pipeline.RainThresholdMM {
		return &domain.ConfigurationError{Option: "severe_precip_mm", Reason: "must exceed rain_threshold_mm"}
	}
	if c.Pipeline.SevereWindMPS <= 0 {
		return &domain.ConfigurationError{Option: "severe_wind_mps", Reason: "must be positive"}
	}
	if c.Pipeline.MinYear < 0 {
		return &domain.ConfigurationError{Option: "min_year", Reason: "must not be negative"}
	}

	for _, year := range c.Sources.Holidays.Years {
		if year < 1900 || year > 2100 {
			return &domain.ConfigurationError{Option: "sources.holidays.years", Reason: fmt.Sprintf("implausible year %d", year)}
		}
	}
	return nil
}

func defaultStr(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
