package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for the catalog pipeline. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	CacheHits         prometheus.Counter
	CacheMisses       prometheus.Counter
	CacheEntries      prometheus.Gauge
	CoalescedRequests prometheus.Counter
	UpstreamRequests  *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	PipelineDuration  prometheus.Histogram
	PipelineFailures  prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "showcatalog_cache_hits_total",
			Help: "Catalog queries answered from the cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "showcatalog_cache_misses_total",
			Help: "Catalog queries that ran the pipeline",
		}),
		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "showcatalog_cache_entries",
			Help: "Entries currently held by the page cache, expired ones included",
		}),
		CoalescedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "showcatalog_coalesced_requests_total",
			Help: "Cache misses that waited on a pipeline run started by another request",
		}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "showcatalog_upstream_requests_total",
			Help: "Requests sent to the upstream catalog",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "showcatalog_upstream_request_duration_seconds",
			Help:    "Latency of upstream catalog requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "showcatalog_pipeline_duration_seconds",
			Help:    "Time spent fetching, transforming and shaping a catalog page",
			Buckets: prometheus.DefBuckets,
		}),
		PipelineFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "showcatalog_pipeline_failures_total",
			Help: "Pipeline runs that ended in an error",
		}),
	}
}

func (m *Metrics) cacheHit() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) cacheMiss() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}

func (m *Metrics) cacheSize(n int) {
	if m != nil {
		m.CacheEntries.Set(float64(n))
	}
}

func (m *Metrics) coalesced() {
	if m != nil {
		m.CoalescedRequests.Inc()
	}
}

func (m *Metrics) upstream(endpoint string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

func (m *Metrics) pipeline(start time.Time, err error) {
	if m == nil {
		return
	}
	m.PipelineDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.PipelineFailures.Inc()
	}
}
