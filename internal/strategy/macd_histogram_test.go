package strategy

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACDHistogramStrategy_InsufficientHistory(t *testing.T) {
	s := NewMACDHistogramStrategy()
	series := buildSeries("BTCUSDT", []float64{100, 101, 102})

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Neutral, sig.Direction)
	require.Contains(t, sig.Reasons, "insufficient_data")
}

func trendReversalCloses() []float64 {
	closes := make([]float64, 0, 70)
	price := 200.0
	for i := 0; i < 40; i++ {
		price -= 1.5
		closes = append(closes, price)
	}
	for i := 0; i < 25; i++ {
		price += 4
		closes = append(closes, price)
	}
	return closes
}

func TestMACDHistogramStrategy_SignConsistency(t *testing.T) {
	s := NewMACDHistogramStrategy()
	series := buildSeries("BTCUSDT", trendReversalCloses())

	sig := s.Evaluate(context.Background(), series)

	switch sig.Direction {
	case Long:
		assert.Greater(t, sig.Strength, 0.0)
	case Short:
		assert.Less(t, sig.Strength, 0.0)
	case Neutral:
		assert.Equal(t, 0.0, sig.Strength)
	}
	assert.Equal(t, math.Abs(sig.Strength), sig.Confidence)
	assert.NotEmpty(t, sig.Reasons)
}

func TestMACDHistogramStrategy_Deterministic(t *testing.T) {
	s := NewMACDHistogramStrategy()
	series := buildSeries("BTCUSDT", trendReversalCloses())

	a := s.Evaluate(context.Background(), series)
	b := s.Evaluate(context.Background(), series)

	assert.Equal(t, a.Direction, b.Direction)
	assert.Equal(t, a.Strength, b.Strength)
}

func TestBullishDivergence_NoFalsePositiveOnMonotonicSeries(t *testing.T) {
	closes := make([]float64, 30)
	histogram := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i)
		histogram[i] = float64(i) * 0.1
	}
	assert.False(t, bullishDivergence(closes, histogram, 10))
}
