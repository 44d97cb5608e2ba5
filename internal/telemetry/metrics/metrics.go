// Package metrics holds the Prometheus collectors for the screener.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds all screener metrics.
type Registry struct {
	ScanDuration  prometheus.Histogram
	ScansTotal    prometheus.Counter
	ActiveScans   prometheus.Gauge
	Candidates    prometheus.Histogram
	FetchFailures *prometheus.CounterVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheHitRatio prometheus.Gauge

	cacheTypes []string
}

// NewRegistry creates the screener metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_scan_duration_seconds",
			Help:    "End-to-end duration of one scan",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "screener_scans_total",
			Help: "Total number of scans initiated",
		}),
		ActiveScans: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_active_scans",
			Help: "Number of currently running scans",
		}),
		Candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "screener_scan_candidates",
			Help:    "Candidate set size per scan after universe filtering",
			Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_fetch_failures_total",
			Help: "Per-instrument failures by reason",
		}, []string{"reason"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_cache_hits_total",
			Help: "Cache hits by cache type",
		}, []string{"cache_type"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "screener_cache_misses_total",
			Help: "Cache misses by cache type",
		}, []string{"cache_type"}),
		CacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "screener_cache_hit_ratio",
			Help: "Cache hit ratio across all cache types (0.0 to 1.0)",
		}),
		cacheTypes: []string{"metadata", "catalog"},
	}

	reg.MustRegister(
		r.ScanDuration,
		r.ScansTotal,
		r.ActiveScans,
		r.Candidates,
		r.FetchFailures,
		r.CacheHits,
		r.CacheMisses,
		r.CacheHitRatio,
	)

	return r
}

// RecordCacheHit records a hit for the given cache type and refreshes the
// hit-ratio gauge.
func (r *Registry) RecordCacheHit(cacheType string) {
	r.CacheHits.WithLabelValues(cacheType).Inc()
	r.updateCacheHitRatio()
}

// RecordCacheMiss records a miss for the given cache type and refreshes the
// hit-ratio gauge.
func (r *Registry) RecordCacheMiss(cacheType string) {
	r.CacheMisses.WithLabelValues(cacheType).Inc()
	r.updateCacheHitRatio()
}

// RecordFetchFailure counts one per-instrument failure by reason.
func (r *Registry) RecordFetchFailure(reason string) {
	r.FetchFailures.WithLabelValues(reason).Inc()
}

func (r *Registry) updateCacheHitRatio() {
	var m dto.Metric
	totalHits := 0.0
	totalMisses := 0.0

	for _, cacheType := range r.cacheTypes {
		if counter, err := r.CacheHits.GetMetricWithLabelValues(cacheType); err == nil {
			if err := counter.Write(&m); err == nil {
				totalHits += m.GetCounter().GetValue()
			}
		}
		if counter, err := r.CacheMisses.GetMetricWithLabelValues(cacheType); err == nil {
			if err := counter.Write(&m); err == nil {
				totalMisses += m.GetCounter().GetValue()
			}
		}
	}

	if total := totalHits + totalMisses; total > 0 {
		r.CacheHitRatio.Set(totalHits / total)
	}
}
