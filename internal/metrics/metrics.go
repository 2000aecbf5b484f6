package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP/API metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "decisioncore_api_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "path", "status_code"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisioncore_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status_code"})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisioncore_errors_total",
		Help: "Total number of errors by type and component",
	}, []string{"type", "component"})
)

// Candle store metrics.
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "decisioncore_database_query_duration_ms",
		Help:    "Database query duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"query_type"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "decisioncore_database_connections_active",
		Help: "Number of active database connections",
	})

	DatabaseConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "decisioncore_database_connections_idle",
		Help: "Number of idle database connections",
	})

	RedisOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisioncore_redis_operations_total",
		Help: "Total number of Redis operations by type",
	}, []string{"operation"})
)

// Decision pipeline metrics.
var (
	// RecommendationBuildDuration tracks end-to-end Engine.Recommend latency,
	// from provider fetch through explanation, labeled by outcome so a
	// failing instrument doesn't silently skew the success-path buckets.
	RecommendationBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "decisioncore_recommendation_build_duration_ms",
		Help:    "Recommendation engine run duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"outcome"})

	// RecommendationCacheResult counts GetOrBuild outcomes by instrument and
	// result (hit, miss, error) for cache-effectiveness dashboards.
	RecommendationCacheResult = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisioncore_recommendation_cache_result_total",
		Help: "Total recommendation cache lookups by instrument and result",
	}, []string{"instrument", "result"})

	// StrategyFailures counts panics/errors recovered during strategy
	// evaluation, labeled by strategy name, so one misbehaving strategy is
	// visible without taking down a recommendation run.
	StrategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "decisioncore_strategy_failures_total",
		Help: "Total strategy evaluation failures by strategy name",
	}, []string{"strategy"})
)

// UpdateDatabaseConnections updates database connection pool gauges.
func UpdateDatabaseConnections(active, idle int32) {
	DatabaseConnectionsActive.Set(float64(active))
	DatabaseConnectionsIdle.Set(float64(idle))
}

// RecordAPIRequest records an API request with duration.
func RecordAPIRequest(method, path, statusCode string, durationMs float64) {
	APIRequestDuration.WithLabelValues(method, path, statusCode).Observe(durationMs)
	HTTPRequests.WithLabelValues(method, path, statusCode).Inc()
}

// RecordError records an error by type and originating component.
func RecordError(errorType, component string) {
	Errors.WithLabelValues(errorType, component).Inc()
}

// RecordDatabaseQuery records a candle-store query's duration.
func RecordDatabaseQuery(queryType string, durationMs float64) {
	DatabaseQueryDuration.WithLabelValues(queryType).Observe(durationMs)
}

// RecordRedisOperation records a Redis operation by kind (get/set/del/...).
func RecordRedisOperation(operation string) {
	RedisOperations.WithLabelValues(operation).Inc()
}

// RecordRecommendationBuild records one Engine.Recommend run's duration,
// labeled "ok" or "error" by whether it returned a usable Recommendation.
func RecordRecommendationBuild(durationMs float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RecommendationBuildDuration.WithLabelValues(outcome).Observe(durationMs)
}

// RecordCacheResult records a recommendation cache lookup outcome.
func RecordCacheResult(instrument, result string) {
	RecommendationCacheResult.WithLabelValues(instrument, result).Inc()
}

// RecordStrategyFailure records a recovered strategy evaluation failure.
func RecordStrategyFailure(strategy string) {
	StrategyFailures.WithLabelValues(strategy).Inc()
}
