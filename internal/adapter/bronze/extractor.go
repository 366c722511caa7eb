package bronze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Rabbins/nyc-use-case/internal/adapter/nager"
	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/observability"
	"github.com/Rabbins/nyc-use-case/internal/pipeline"
)

// Sources configures what the extractor acquires.
type Sources struct {
	CollisionsURL      string
	CollisionsFilename string

	HolidayYears     []int
	HolidayCountry   string
	HolidaysFilename string

	WeatherURL      string
	WeatherFilename string
}

// Extractor assembles the three raw batches, downloading any bronze file
// that is not cached yet. Implements pipeline.Extractor.
type Extractor struct {
	downloader    *Downloader
	holidayClient *nager.Client
	sources       Sources
	dir           string
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewExtractor wires a Downloader and holiday client to the configured
// sources.
func NewExtractor(d *Downloader, holidayClient *nager.Client, sources Sources, logger *slog.Logger, metrics *observability.Metrics) *Extractor {
	return &Extractor{
		downloader:    d,
		holidayClient: holidayClient,
		sources:       sources,
		dir:           d.dir,
		logger:        logger,
		metrics:       metrics,
	}
}

// Extract acquires and reads all three sources.
func (e *Extractor) Extract(ctx context.Context) (pipeline.Batches, error) {
	collisionsPath, err := e.downloader.Fetch(ctx, domain.SourceCollisions, e.sources.CollisionsURL, e.sources.CollisionsFilename)
	if err != nil {
		return pipeline.Batches{}, err
	}
	weatherPath, err := e.downloader.Fetch(ctx, domain.SourceWeather, e.sources.WeatherURL, e.sources.WeatherFilename)
	if err != nil {
		return pipeline.Batches{}, err
	}
	holidaysPath, err := e.ensureHolidays(ctx)
	if err != nil {
		return pipeline.Batches{}, err
	}

	collisions, err := LoadCSV(collisionsPath, domain.SourceCollisions)
	if err != nil {
		return pipeline.Batches{}, err
	}
	weather, err := LoadCSV(weatherPath, domain.SourceWeather)
	if err != nil {
		return pipeline.Batches{}, err
	}
	holidays, err := LoadHolidayJSON(holidaysPath)
	if err != nil {
		return pipeline.Batches{}, err
	}

	return pipeline.Batches{Collisions: collisions, Holidays: holidays, Weather: weather}, nil
}

// ensureHolidays reuses the cached holiday file or fetches the configured
// years from the holiday API and caches the combined response.
func (e *Extractor) ensureHolidays(ctx context.Context) (string, error) {
	path := filepath.Join(e.dir, e.sources.HolidaysFilename)
	if _, err := os.Stat(path); err == nil {
		e.logger.Debug("bronze file cached", "source", string(domain.SourceHolidays), "path", path)
		e.metrics.FetchRequests.WithLabelValues(string(domain.SourceHolidays), "cached").Inc()
		return path, nil
	}

	if len(e.sources.HolidayYears) == 0 {
		return "", &domain.ConfigurationError{
			Option: "sources.holidays.years",
			Reason: "no years configured and no cached file",
		}
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create bronze dir: %w", err)
	}

	start := time.Now()
	holidays, err := e.holidayClient.FetchYears(ctx, e.sources.HolidayYears, e.sources.HolidayCountry)
	if err != nil {
		e.metrics.FetchRequests.WithLabelValues(string(domain.SourceHolidays), "error").Inc()
		return "", fmt.Errorf("fetch holidays: %w", err)
	}

	data, err := json.MarshalIndent(holidays, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode holidays: %w", err)
	}
	if err := writeAtomic(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("cache holidays: %w", err)
	}

	e.metrics.FetchRequests.WithLabelValues(string(domain.SourceHolidays), "success").Inc()
	e.metrics.FetchDuration.WithLabelValues(string(domain.SourceHolidays)).Observe(time.Since(start).Seconds())
	e.logger.Info("bronze file downloaded", "source", string(domain.SourceHolidays), "path", path, "years", e.sources.HolidayYears)
	return path, nil
}
