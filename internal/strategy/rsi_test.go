package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRSIStrategy_InsufficientHistory(t *testing.T) {
	s := NewRSIStrategy()
	series := buildSeries("BTCUSDT", []float64{100, 101, 102})

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Neutral, sig.Direction)
	assert.Equal(t, 0.0, sig.Confidence)
	require.Contains(t, sig.Reasons, "insufficient_data")
}

func TestRSIStrategy_Oversold(t *testing.T) {
	s := NewRSIStrategy()
	closes := make([]float64, 30)
	price := 100.0
	for i := range closes {
		price -= 1
		closes[i] = price
	}
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Long, sig.Direction)
	assert.Greater(t, sig.Strength, 0.0)
	assert.Equal(t, sig.Strength, sig.Confidence)
}

func TestRSIStrategy_Overbought(t *testing.T) {
	s := NewRSIStrategy()
	closes := make([]float64, 30)
	price := 100.0
	for i := range closes {
		price += 1
		closes[i] = price
	}
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Short, sig.Direction)
	assert.Less(t, sig.Strength, 0.0)
}

func TestRSIStrategy_FlatSeriesIsNeutral(t *testing.T) {
	s := NewRSIStrategy()
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Neutral, sig.Direction)
	assert.Equal(t, 0.0, sig.Strength)
}
