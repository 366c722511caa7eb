package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Rabbins/nyc-use-case/internal/domain"
	"github.com/Rabbins/nyc-use-case/internal/gold"
	"github.com/Rabbins/nyc-use-case/internal/observability"
	"github.com/Rabbins/nyc-use-case/internal/schema"
	"github.com/Rabbins/nyc-use-case/internal/silver"
)

// Batches carries one raw batch per source out of the Bronze tier.
type Batches struct {
	Collisions domain.RawBatch
	Holidays   domain.RawBatch
	Weather    domain.RawBatch
}

// Extractor acquires all three raw datasets.
type Extractor interface {
	Extract(ctx context.Context) (Batches, error)
}

// Loader persists the Silver and Gold outputs.
type Loader interface {
	LoadCollisions(ctx context.Context, partitions map[domain.PartitionKey][]domain.CollisionRecord, keys []domain.PartitionKey) error
	LoadHolidays(ctx context.Context, records []domain.HolidayRecord) error
	LoadWeather(ctx context.Context, observations []domain.WeatherObservation) error
	LoadAggregates(ctx context.Context, rows []domain.AggregateRow) error
}

// Options holds the per-run cleaning and classification settings.
type Options struct {
	Jurisdiction string
	Station      string
	MinYear      int
	Rules        gold.Rules
	Windows      gold.TimeWindows
}

// Pipeline orchestrates one extract-validate-clean-enrich-aggregate-load run.
// A Pipeline value represents a single run and carries its run ID.
type Pipeline struct {
	extractor Extractor
	loader    Loader
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	runID     string
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, l Loader, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		extractor: e,
		loader:    l,
		logger:    logger.With("run_id", runID),
		metrics:   metrics,
		opts:      opts,
		runID:     runID,
	}
}

// Run executes the batch ETL once and reports what happened. Any error
// aborts the run before the load stage writes output.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runStart := time.Now()
	summary := &Summary{RunID: p.runID}

	p.logger.Info("pipeline run starting",
		"jurisdiction", p.opts.Jurisdiction,
		"station", p.opts.Station,
		"min_year", p.opts.MinYear,
	)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	start := time.Now()
	batches, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	p.observeStage("extract", start)
	summary.Collisions.Extracted = len(batches.Collisions.Rows)
	summary.Holidays.Extracted = len(batches.Holidays.Rows)
	summary.Weather.Extracted = len(batches.Weather.Rows)
	for _, b := range []domain.RawBatch{batches.Collisions, batches.Holidays, batches.Weather} {
		p.metrics.RowsExtracted.WithLabelValues(string(b.Source)).Add(float64(len(b.Rows)))
	}
	p.logger.Info("sources extracted",
		"collisions", summary.Collisions.Extracted,
		"holidays", summary.Holidays.Extracted,
		"weather", summary.Weather.Extracted,
	)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	start = time.Now()
	validCollisions, err := p.validateSource(batches.Collisions, &summary.Collisions)
	if err != nil {
		return nil, fmt.Errorf("validate collisions: %w", err)
	}
	validHolidays, err := p.validateSource(batches.Holidays, &summary.Holidays)
	if err != nil {
		return nil, fmt.Errorf("validate holidays: %w", err)
	}
	validWeather, err := p.validateSource(batches.Weather, &summary.Weather)
	if err != nil {
		return nil, fmt.Errorf("validate weather: %w", err)
	}
	p.observeStage("validate", start)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	start = time.Now()
	collisions, collisionStats := silver.CleanCollisions(validCollisions, p.opts.MinYear)
	holidays, holidayStats := silver.CleanHolidays(validHolidays)
	observations, weatherStats := silver.CleanWeather(validWeather, p.opts.Station, p.opts.MinYear)
	p.recordCleanStats(domain.SourceCollisions, collisionStats, len(collisions), &summary.Collisions)
	p.recordCleanStats(domain.SourceHolidays, holidayStats, len(holidays), &summary.Holidays)
	p.recordCleanStats(domain.SourceWeather, weatherStats, len(observations), &summary.Weather)

	partitions := silver.Partition(collisions)
	keys := silver.SortedKeys(partitions)
	summary.Partitions = len(keys)
	p.observeStage("clean", start)
	p.logger.Info("silver tier cleaned",
		"collisions", len(collisions),
		"holidays", len(holidays),
		"weather", len(observations),
		"partitions", len(keys),
	)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	start = time.Now()
	calendar, err := domain.NewHolidayCalendar(holidays, p.opts.Jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	weather, err := domain.NewWeatherTable(observations)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	enriched := gold.Enrich(collisions, calendar, weather, p.opts.Rules)
	summary.Enriched = len(enriched)
	p.metrics.RecordsEnriched.Add(float64(len(enriched)))
	p.observeStage("enrich", start)
	p.logger.Info("records enriched", "count", len(enriched), "holiday_dates", calendar.Len(), "weather_dates", weather.Len())

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	start = time.Now()
	rows := gold.Aggregate(enriched, p.opts.Windows)
	summary.Groups = len(rows)
	p.metrics.AggregateGroups.Set(float64(len(rows)))
	p.observeStage("aggregate", start)

	total := 0
	for _, row := range rows {
		total += row.Collisions
	}
	if total != len(enriched) {
		return nil, fmt.Errorf("aggregate: group totals sum to %d, expected %d enriched records", total, len(enriched))
	}
	p.logger.Info("aggregate built", "groups", len(rows))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	start = time.Now()
	if err := p.loader.LoadCollisions(ctx, partitions, keys); err != nil {
		return nil, fmt.Errorf("load collisions: %w", err)
	}
	if err := p.loader.LoadHolidays(ctx, holidays); err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	if err := p.loader.LoadWeather(ctx, observations); err != nil {
		return nil, fmt.Errorf("load weather: %w", err)
	}
	if err := p.loader.LoadAggregates(ctx, rows); err != nil {
		return nil, fmt.Errorf("load aggregates: %w", err)
	}
	p.observeStage("load", start)

	summary.Duration = time.Since(runStart)
	p.logger.Info("pipeline run complete",
		"partitions", summary.Partitions,
		"enriched", summary.Enriched,
		"groups", summary.Groups,
		"duration", summary.Duration,
	)
	return summary, nil
}

// validateSource runs the source schema over a raw batch, records
// rejections, and returns the surviving rows.
func (p *Pipeline) validateSource(batch domain.RawBatch, counts *SourceCounts) (domain.RawBatch, error) {
	s, ok := schema.ForSource(batch.Source)
	if !ok {
		return domain.RawBatch{}, fmt.Errorf("no schema registered for source %q", batch.Source)
	}

	valid, rejected, err := s.Validate(batch)
	if err != nil {
		return domain.RawBatch{}, err
	}
	counts.Rejected = len(rejected)

	if len(rejected) > 0 {
		counts.Reasons = make(map[string]int)
		for _, r := range rejected {
			counts.Reasons[r.Reason]++
		}
		for reason, n := range counts.Reasons {
			p.metrics.RowsRejected.WithLabelValues(string(batch.Source), reason).Add(float64(n))
		}
		p.logger.Warn("rows rejected during validation",
			"source", string(batch.Source),
			"count", len(rejected),
			"reasons", counts.Reasons,
		)
	}
	return valid, nil
}

// recordCleanStats folds a cleaner's dedup and filter counts into metrics
// and the run summary.
func (p *Pipeline) recordCleanStats(source domain.Source, stats silver.Stats, clean int, counts *SourceCounts) {
	counts.Deduplicated = stats.Deduplicated
	counts.Filtered = stats.Filtered
	counts.Clean = clean
	if stats.Deduplicated > 0 {
		p.metrics.RowsDeduplicated.WithLabelValues(string(source)).Add(float64(stats.Deduplicated))
	}
	if stats.Filtered > 0 {
		p.metrics.RowsFiltered.WithLabelValues(string(source)).Add(float64(stats.Filtered))
	}
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
