package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBollingerBandsStrategy_InsufficientHistory(t *testing.T) {
	s := NewBollingerBandsStrategy()
	series := buildSeries("BTCUSDT", []float64{100, 101, 102})

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Neutral, sig.Direction)
	require.Contains(t, sig.Reasons, "insufficient_data")
}

func TestBollingerBandsStrategy_Squeeze(t *testing.T) {
	s := NewBollingerBandsStrategy()
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100
	}
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Neutral, sig.Direction)
	assert.Equal(t, 0.3, sig.Confidence)
	assert.Contains(t, sig.Reasons, "squeeze")
}

func TestBollingerBandsStrategy_BreakoutBelowLowerBand(t *testing.T) {
	s := NewBollingerBandsStrategy()
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	// sharp drop below the rolling band on the final bar
	closes[len(closes)-1] = 50
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Long, sig.Direction)
	assert.GreaterOrEqual(t, sig.Strength, 0.0)
}

func TestBollingerBandsStrategy_BreakoutAboveUpperBand(t *testing.T) {
	s := NewBollingerBandsStrategy()
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	closes[len(closes)-1] = 200
	series := buildSeries("BTCUSDT", closes)

	sig := s.Evaluate(context.Background(), series)
	assert.Equal(t, Short, sig.Direction)
	assert.LessOrEqual(t, sig.Strength, 0.0)
}
