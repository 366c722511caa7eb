package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Rabbins/nyc-use-case/internal/adapter/bronze"
	"github.com/Rabbins/nyc-use-case/internal/adapter/nager"
	"github.com/Rabbins/nyc-use-case/internal/adapter/storage"
	"github.com/Rabbins/nyc-use-case/internal/config"
	"github.com/Rabbins/nyc-use-case/internal/gold"
	"github.com/Rabbins/nyc-use-case/internal/observability"
	"github.com/Rabbins/nyc-use-case/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	verbose := flag.Bool("verbose", false, "force debug logging")
	flag.Parse()

	// A .env file is optional and never overrides the real environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	metrics := observability.NewMetrics()

	windows, err := gold.NewTimeWindows(cfg.Pipeline.TimeWindowBoundaries)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	downloader := bronze.NewDownloader(cfg.Paths.Bronze, logger, metrics)
	holidayClient := nager.NewClient(cfg.Sources.Holidays.BaseURL, 30*time.Second, logger)
	extractor := bronze.NewExtractor(downloader, holidayClient, bronze.Sources{
		CollisionsURL:      cfg.Sources.Collisions.URL,
		CollisionsFilename: cfg.Sources.Collisions.Filename,
		HolidayYears:       cfg.Sources.Holidays.Years,
		HolidayCountry:     cfg.Sources.Holidays.Country,
		HolidaysFilename:   cfg.Sources.Holidays.Filename,
		WeatherURL:         cfg.Sources.Weather.URL,
		WeatherFilename:    cfg.Sources.Weather.Filename,
	}, logger, metrics)

	store := storage.NewStore(cfg.Paths.Silver, cfg.Paths.Gold, logger)

	p := pipeline.New(extractor, store, logger, metrics, pipeline.Options{
		Jurisdiction: cfg.Pipeline.Jurisdiction,
		Station:      cfg.Sources.Weather.Station,
		MinYear:      cfg.Pipeline.MinYear,
		Rules: gold.Rules{
			RainThresholdMM: cfg.Pipeline.RainThresholdMM,
			SeverePrecipMM:  cfg.Pipeline.SeverePrecipMM,
			SevereWindMPS:   cfg.Pipeline.SevereWindMPS,
		},
		Windows: windows,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	pushMetrics(logger, cfg.Metrics.PushgatewayURL)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run interrupted", "error", err)
			return 130
		}
		logger.Error("run failed", "error", err)
		return 1
	}

	logger.Info("run summary",
		"run_id", summary.RunID,
		"collisions_extracted", summary.Collisions.Extracted,
		"collisions_rejected", summary.Collisions.Rejected,
		"collisions_clean", summary.Collisions.Clean,
		"partitions", summary.Partitions,
		"enriched", summary.Enriched,
		"groups", summary.Groups,
		"duration", summary.Duration,
	)
	return 0
}

// pushMetrics runs on a fresh context so an interrupted run still reports.
func pushMetrics(logger *slog.Logger, gatewayURL string) {
	if gatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.PushMetrics(ctx, gatewayURL); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}
}
