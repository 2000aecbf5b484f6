// Package risk guards the decision pipeline's external dependencies
// (upstream candle providers, the Postgres candle store) with circuit
// breakers so a failing dependency degrades fast instead of piling up
// blocked goroutines.
package risk

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Circuit breaker states for Prometheus metrics.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Default circuit breaker thresholds, one set per guarded dependency.
const (
	// MarketDataMinRequests etc. guard calls to the upstream candle
	// provider (an exchange REST/websocket API or similar).
	MarketDataMinRequests     = 5
	MarketDataFailureRatio    = 0.6
	MarketDataOpenTimeout     = 30 * time.Second
	MarketDataHalfOpenMaxReqs = 3
	MarketDataCountInterval   = 10 * time.Second

	// DatabaseMinRequests etc. guard calls to the Postgres candle store,
	// with a faster recovery window than the upstream provider.
	DatabaseMinRequests     = 10
	DatabaseFailureRatio    = 0.6
	DatabaseOpenTimeout     = 15 * time.Second
	DatabaseHalfOpenMaxReqs = 5
	DatabaseCountInterval   = 10 * time.Second
)

// ServiceSettings holds circuit breaker configuration for one guarded
// dependency.
type ServiceSettings struct {
	MinRequests     uint32
	FailureRatio    float64
	OpenTimeout     time.Duration
	HalfOpenMaxReqs uint32
	CountInterval   time.Duration
}

func defaultMarketDataSettings() ServiceSettings {
	return ServiceSettings{
		MinRequests:     MarketDataMinRequests,
		FailureRatio:    MarketDataFailureRatio,
		OpenTimeout:     MarketDataOpenTimeout,
		HalfOpenMaxReqs: MarketDataHalfOpenMaxReqs,
		CountInterval:   MarketDataCountInterval,
	}
}

func defaultDatabaseSettings() ServiceSettings {
	return ServiceSettings{
		MinRequests:     DatabaseMinRequests,
		FailureRatio:    DatabaseFailureRatio,
		OpenTimeout:     DatabaseOpenTimeout,
		HalfOpenMaxReqs: DatabaseHalfOpenMaxReqs,
		CountInterval:   DatabaseCountInterval,
	}
}

// CircuitBreakerManager owns one gobreaker.CircuitBreaker per guarded
// dependency and the Prometheus metrics tracking their state.
type CircuitBreakerManager struct {
	marketData *gobreaker.CircuitBreaker
	database   *gobreaker.CircuitBreaker
	metrics    *CircuitBreakerMetrics
}

// CircuitBreakerMetrics holds Prometheus metrics for circuit breaker state.
type CircuitBreakerMetrics struct {
	state    *prometheus.GaugeVec
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

var (
	globalMetrics *CircuitBreakerMetrics
	metricsOnce   sync.Once
)

func initMetrics() {
	metricsOnce.Do(func() {
		globalMetrics = &CircuitBreakerMetrics{
			state: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "circuit_breaker_state",
					Help: "Circuit breaker state (0=closed, 1=open, 2=half_open)",
				},
				[]string{"service"},
			),
			requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "circuit_breaker_requests_total",
					Help: "Total number of requests through circuit breaker",
				},
				[]string{"service", "result"},
			),
			failures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "circuit_breaker_failures_total",
					Help: "Total number of failures tracked by circuit breaker",
				},
				[]string{"service"},
			),
		}
	})
}

// NewCircuitBreakerManager creates a manager with default thresholds for
// both guarded dependencies.
func NewCircuitBreakerManager() *CircuitBreakerManager {
	return NewCircuitBreakerManagerWithSettings(nil, nil)
}

// NewCircuitBreakerManagerWithSettings creates a manager, substituting
// defaults for any nil settings.
func NewCircuitBreakerManagerWithSettings(marketDataSettings, databaseSettings *ServiceSettings) *CircuitBreakerManager {
	initMetrics()

	manager := &CircuitBreakerManager{metrics: globalMetrics}

	mdSettings := defaultMarketDataSettings()
	if marketDataSettings != nil {
		mdSettings = *marketDataSettings
	}
	dbSettings := defaultDatabaseSettings()
	if databaseSettings != nil {
		dbSettings = *databaseSettings
	}

	manager.marketData = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "market_data",
		MaxRequests: mdSettings.HalfOpenMaxReqs,
		Interval:    mdSettings.CountInterval,
		Timeout:     mdSettings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= mdSettings.MinRequests && failureRatio >= mdSettings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			manager.updateMetrics("market_data", to)
		},
	})

	manager.database = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "database",
		MaxRequests: dbSettings.HalfOpenMaxReqs,
		Interval:    dbSettings.CountInterval,
		Timeout:     dbSettings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= dbSettings.MinRequests && failureRatio >= dbSettings.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			manager.updateMetrics("database", to)
		},
	})

	manager.updateMetrics("market_data", manager.marketData.State())
	manager.updateMetrics("database", manager.database.State())

	return manager
}

// NewPassthroughCircuitBreakerManager returns a manager whose breakers never
// trip, for tests that want to exercise other components in isolation.
func NewPassthroughCircuitBreakerManager() *CircuitBreakerManager {
	initMetrics()

	manager := &CircuitBreakerManager{metrics: globalMetrics}
	neverTrip := func(counts gobreaker.Counts) bool { return false }

	manager.marketData = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "market_data_passthrough",
		MaxRequests: 1000,
		Timeout:     time.Millisecond,
		ReadyToTrip: neverTrip,
	})
	manager.database = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "database_passthrough",
		MaxRequests: 1000,
		Timeout:     time.Millisecond,
		ReadyToTrip: neverTrip,
	})

	return manager
}

// MarketData returns the circuit breaker guarding the upstream candle
// provider.
func (m *CircuitBreakerManager) MarketData() *gobreaker.CircuitBreaker {
	return m.marketData
}

// Database returns the circuit breaker guarding the Postgres candle store.
func (m *CircuitBreakerManager) Database() *gobreaker.CircuitBreaker {
	return m.database
}

func (m *CircuitBreakerManager) updateMetrics(service string, state gobreaker.State) {
	var stateValue float64
	switch state {
	case gobreaker.StateClosed:
		stateValue = 0
	case gobreaker.StateOpen:
		stateValue = 1
	case gobreaker.StateHalfOpen:
		stateValue = 2
	}
	m.metrics.state.WithLabelValues(service).Set(stateValue)
}

// RecordRequest records a request result for metrics.
func (m *CircuitBreakerMetrics) RecordRequest(service string, success bool) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
		m.failures.WithLabelValues(service).Inc()
	}
	m.requests.WithLabelValues(service, result).Inc()
}

// Metrics returns the metrics instance for manual recording.
func (m *CircuitBreakerManager) Metrics() *CircuitBreakerMetrics {
	return m.metrics
}
