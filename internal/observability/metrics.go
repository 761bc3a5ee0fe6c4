package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediavault_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AnalyticsCacheHits counts analytics snapshot cache hits.
	AnalyticsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediavault_analytics_cache_hits_total",
		Help: "Total number of analytics reads served from cache",
	})

	// AnalyticsCacheMisses counts analytics snapshot cache misses,
	// including cache-layer failures that degrade to a miss.
	AnalyticsCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mediavault_analytics_cache_misses_total",
		Help: "Total number of analytics reads recomputed from the view log",
	})

	// ViewsRecorded counts view events by write path ("stream" or "endpoint").
	ViewsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_views_recorded_total",
		Help: "Total number of view events appended to the view log",
	}, []string{"source"})

	// StreamedBytes counts media bytes scheduled for delivery by response status.
	StreamedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mediavault_streamed_bytes_total",
		Help: "Total number of media bytes served, by response status",
	}, []string{"status"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
