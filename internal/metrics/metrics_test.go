package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateDatabaseConnections(t *testing.T) {
	assert.NotPanics(t, func() {
		UpdateDatabaseConnections(10, 3)
		UpdateDatabaseConnections(0, 0)
		UpdateDatabaseConnections(100, 50)
	})
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode string
		durationMs float64
	}{
		{"GET success", "GET", "/api/v1/recommendations/BTCUSDT", "200", 45.5},
		{"POST refresh", "POST", "/api/v1/recommendations/BTCUSDT/refresh", "200", 120.3},
		{"GET not found", "GET", "/api/v1/recommendations/UNKNOWN", "404", 5.2},
		{"PUT error", "PUT", "/api/v1/strategies/RSI", "500", 250.8},
		{"zero duration", "GET", "/health", "200", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordAPIRequest(tt.method, tt.path, tt.statusCode, tt.durationMs)
			})
		})
	}
}

func TestRecordError(t *testing.T) {
	tests := []struct {
		name      string
		errorType string
		component string
	}{
		{"database error", "database_timeout", "market_provider"},
		{"api error", "invalid_request", "api"},
		{"cache error", "redis_timeout", "recommendation_cache"},
		{"strategy error", "panic", "strategy_registry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordError(tt.errorType, tt.component)
			})
		})
	}
}

func TestRecordDatabaseQuery(t *testing.T) {
	tests := []struct {
		name       string
		queryType  string
		durationMs float64
	}{
		{"SELECT candles fast", "SELECT", 2.5},
		{"INSERT candle", "INSERT", 15.3},
		{"UPDATE slow", "UPDATE", 250.7},
		{"DELETE", "DELETE", 50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDatabaseQuery(tt.queryType, tt.durationMs)
			})
		})
	}
}

func TestRecordRedisOperation(t *testing.T) {
	for _, op := range []string{"get", "set", "del", "exists", "expire"} {
		op := op
		t.Run(op, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordRedisOperation(op)
			})
		})
	}
}

func TestRecordRecommendationBuild(t *testing.T) {
	tests := []struct {
		name       string
		durationMs float64
		err        error
	}{
		{"successful build", 125.5, nil},
		{"failed build", 10.2, assert.AnError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordRecommendationBuild(tt.durationMs, tt.err)
			})
		})
	}
}

func TestRecordCacheResult(t *testing.T) {
	for _, result := range []string{"hit", "miss", "error"} {
		result := result
		t.Run(result, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordCacheResult("BTCUSDT", result)
			})
		})
	}
}

func TestRecordStrategyFailure(t *testing.T) {
	for _, strategy := range []string{"RSI", "MACD-Histogram", "Bollinger-Bands"} {
		strategy := strategy
		t.Run(strategy, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordStrategyFailure(strategy)
			})
		})
	}
}
