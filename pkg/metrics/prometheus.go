package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	selections     *prometheus.CounterVec
	selectionSizes *prometheus.GaugeVec
	upstreamFetch  *prometheus.CounterVec
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	benchmarkChg   *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		selections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortbasket_selections_total",
				Help: "Total number of selection runs",
			},
			[]string{"outcome"},
		),
		selectionSizes: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shortbasket_selection_size",
				Help: "Candidate counts from the latest selection run",
			},
			[]string{"stage"},
		),
		upstreamFetch: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortbasket_upstream_fetches_total",
				Help: "Total upstream fetches by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortbasket_cache_hits_total",
				Help: "Total cache hits by cache name",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortbasket_cache_misses_total",
				Help: "Total cache misses by cache name",
			},
			[]string{"cache"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortbasket_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortbasket_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		benchmarkChg: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shortbasket_benchmark_price_change_24h",
				Help: "Latest 24h price change percent of the benchmark symbol",
			},
			[]string{"symbol"},
		),
	}
}

// RecordSelection records the sizes of one selection run.
func (r *Recorder) RecordSelection(selected, eligible, total int) {
	outcome := "selected"
	if selected == 0 {
		outcome = "empty"
	}
	r.selections.WithLabelValues(outcome).Inc()
	r.selectionSizes.WithLabelValues("selected").Set(float64(selected))
	r.selectionSizes.WithLabelValues("eligible").Set(float64(eligible))
	r.selectionSizes.WithLabelValues("total").Set(float64(total))
}

// RecordUpstreamFetch records one upstream fetch attempt.
func (r *Recorder) RecordUpstreamFetch(endpoint, outcome string) {
	r.upstreamFetch.WithLabelValues(endpoint, outcome).Inc()
}

// RecordCacheHit records a hit for the named cache.
func (r *Recorder) RecordCacheHit(cache string) {
	r.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a miss for the named cache.
func (r *Recorder) RecordCacheMiss(cache string) {
	r.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordBenchmarkChange records the benchmark's latest 24h change.
func (r *Recorder) RecordBenchmarkChange(symbol string, change float64) {
	r.benchmarkChg.WithLabelValues(symbol).Set(change)
}
