package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestInsertedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgeo_ingest_inserted_total",
		Help: "Total records persisted by ingestion runs",
	}, []string{"table"})
	IngestSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgeo_ingest_skipped_total",
		Help: "Total records skipped during ingestion, by stage",
	}, []string{"table", "stage"})
	IngestFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgeo_ingest_fallbacks_total",
		Help: "Total chunks that fell back to per-record inserts",
	}, []string{"table"})
	IngestChunkDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roadgeo_ingest_chunk_duration_ms",
		Help:    "Chunk insert duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"table"})
	NearestQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgeo_nearest_queries_total",
		Help: "Total nearest queries by strategy and outcome",
	}, []string{"table", "strategy", "outcome"})
	NearestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roadgeo_nearest_duration_ms",
		Help:    "Nearest query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	}, []string{"table", "strategy"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadgeo_cache_hits_total",
		Help: "Total redis cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadgeo_cache_misses_total",
		Help: "Total redis cache misses",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roadgeo_http_requests_total",
		Help: "Total HTTP requests by route and status",
	}, []string{"route", "status"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roadgeo_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(IngestInsertedTotal)
	prometheus.MustRegister(IngestSkippedTotal)
	prometheus.MustRegister(IngestFallbacksTotal)
	prometheus.MustRegister(IngestChunkDurationMs)
	prometheus.MustRegister(NearestQueriesTotal)
	prometheus.MustRegister(NearestDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// Handler exposes every registered collector for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
