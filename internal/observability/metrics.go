package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	RowsExtracted    *prometheus.CounterVec // labels: source={collisions,holidays,weather}
	RowsRejected     *prometheus.CounterVec // labels: source, reason={missing_value,bad_date,bad_number,negative_value}
	RowsDeduplicated *prometheus.CounterVec // labels: source
	RowsFiltered     *prometheus.CounterVec // labels: source
	RecordsEnriched  prometheus.Counter
	AggregateGroups  prometheus.Gauge
	PipelineRunning  prometheus.Gauge

	StageDuration *prometheus.HistogramVec // labels: stage={extract,validate,clean,enrich,aggregate,load}

	// Bronze acquisition metrics.
	FetchRequests *prometheus.CounterVec   // labels: source, outcome={success,error,cached}
	FetchDuration *prometheus.HistogramVec // labels: source
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "rows_extracted_total",
			Help:      "Raw rows read from the Bronze tier by source.",
		}, []string{"source"}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "rows_rejected_total",
			Help:      "Rows rejected during validation by source and reason.",
		}, []string{"source", "reason"}),
		RowsDeduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "rows_deduplicated_total",
			Help:      "Duplicate rows dropped during cleaning by source.",
		}, []string{"source"}),
		RowsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "rows_filtered_total",
			Help:      "Rows dropped by configured filters (station, minimum year) by source.",
		}, []string{"source"}),
		RecordsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "records_enriched_total",
			Help:      "Collision records carried through Gold enrichment.",
		}),
		AggregateGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collision_etl",
			Name:      "aggregate_groups",
			Help:      "Number of non-empty groups in the Gold aggregate.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collision_etl",
			Name:      "pipeline_running",
			Help:      "1 while a run is active, 0 once it finishes.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collision_etl",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"stage"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "collision_etl",
			Name:      "fetch_requests_total",
			Help:      "Bronze source fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "collision_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Bronze source download duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
	}

	prometheus.MustRegister(
		m.RowsExtracted,
		m.RowsRejected,
		m.RowsDeduplicated,
		m.RowsFiltered,
		m.RecordsEnriched,
		m.AggregateGroups,
		m.PipelineRunning,
		m.StageDuration,
		m.FetchRequests,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsExtracted:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "collision_etl", Name: "rows_extracted_total"}, []string{"source"}),
		RowsRejected:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "collision_etl", Name: "rows_rejected_total"}, []string{"source", "reason"}),
		RowsDeduplicated: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "collision_etl", Name: "rows_deduplicated_total"}, []string{"source"}),
		RowsFiltered:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "collision_etl", Name: "rows_filtered_total"}, []string{"source"}),
		RecordsEnriched:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "collision_etl", Name: "records_enriched_total"}),
		AggregateGroups:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "collision_etl", Name: "aggregate_groups"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "collision_etl", Name: "pipeline_running"}),
		StageDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "collision_etl", Name: "stage_duration_seconds"}, []string{"stage"}),
		FetchRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "collision_etl", Name: "fetch_requests_total"}, []string{"source", "outcome"}),
		FetchDuration:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "collision_etl", Name: "fetch_duration_seconds"}, []string{"source"}),
	}
}

// PushMetrics pushes everything in the default registry to a Prometheus
// Pushgateway under the collision_etl job. Called once at the end of a run;
// a batch process has no scrape window of its own.
func PushMetrics(ctx context.Context, gatewayURL string) error {
	pusher := push.New(gatewayURL, "collision_etl").Gatherer(prometheus.DefaultGatherer)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
