package risk

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuitBreakerManager(t *testing.T) {
	manager := NewCircuitBreakerManager()

	require.NotNil(t, manager)
	require.NotNil(t, manager.marketData)
	require.NotNil(t, manager.database)
	require.NotNil(t, manager.metrics)

	assert.Equal(t, gobreaker.StateClosed, manager.marketData.State())
	assert.Equal(t, gobreaker.StateClosed, manager.database.State())
}

func TestCircuitBreakerManager_MarketData(t *testing.T) {
	t.Run("successful requests keep circuit closed", func(t *testing.T) {
		manager := NewCircuitBreakerManager()
		for i := 0; i < 10; i++ {
			_, err := manager.MarketData().Execute(func() (interface{}, error) {
				return "success", nil
			})
			require.NoError(t, err)
		}
		assert.Equal(t, gobreaker.StateClosed, manager.MarketData().State())
	})

	t.Run("circuit opens after threshold failures", func(t *testing.T) {
		manager := NewCircuitBreakerManager()

		for i := 0; i < 5; i++ {
			manager.MarketData().Execute(func() (interface{}, error) {
				return nil, errors.New("upstream error")
			})
		}

		assert.Equal(t, gobreaker.StateOpen, manager.MarketData().State())

		_, err := manager.MarketData().Execute(func() (interface{}, error) {
			return "should not execute", nil
		})
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	})
}

func TestCircuitBreakerManager_Database(t *testing.T) {
	t.Run("database circuit opens after 10 failures", func(t *testing.T) {
		manager := NewCircuitBreakerManager()

		for i := 0; i < 10; i++ {
			manager.Database().Execute(func() (interface{}, error) {
				return nil, errors.New("db error")
			})
		}

		assert.Equal(t, gobreaker.StateOpen, manager.Database().State())
	})
}

func TestPassthroughCircuitBreakerManager_NeverTrips(t *testing.T) {
	manager := NewPassthroughCircuitBreakerManager()

	for i := 0; i < 50; i++ {
		manager.MarketData().Execute(func() (interface{}, error) {
			return nil, errors.New("always fails")
		})
	}
	assert.Equal(t, gobreaker.StateClosed, manager.MarketData().State())
}

func TestCircuitBreakerMetrics_RecordRequest(t *testing.T) {
	manager := NewCircuitBreakerManager()
	manager.Metrics().RecordRequest("market_data", true)
	manager.Metrics().RecordRequest("market_data", false)
}
