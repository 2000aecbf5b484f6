package condenser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riftlabs/decisioncore/internal/regime"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

func sig(name string, dir strategy.Direction, strength float64) strategy.Signal {
	return strategy.Signal{StrategyName: name, Direction: dir, Strength: strength, Confidence: 1}
}

func TestCondense_AllAgreeLong(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("RSI", strategy.Long, 0.8), Weight: 1},
		{Signal: sig("MACD-Histogram", strategy.Long, 0.6), Weight: 1},
		{Signal: sig("Bollinger-Bands", strategy.Long, 0.4), Weight: 1},
	}

	agg := Condense(signals, regime.Unknown)
	assert.Equal(t, strategy.Long, agg.Direction)
	assert.Equal(t, 1.0, agg.Consensus)
	assert.InDelta(t, 0.6, agg.Strength, 1e-9)
	assert.Len(t, agg.Contributing, 3)
}

func TestCondense_ConflictingSignalsCancelToNeutral(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("RSI", strategy.Long, 0.3), Weight: 1},
		{Signal: sig("MACD-Histogram", strategy.Short, -0.3), Weight: 1},
		{Signal: sig("Bollinger-Bands", strategy.Neutral, 0), Weight: 1},
	}

	agg := Condense(signals, regime.Unknown)
	assert.Equal(t, strategy.Neutral, agg.Direction)
	assert.Equal(t, 0.0, agg.Consensus)
	assert.InDelta(t, 0, agg.Strength, 1e-9)
}

func TestCondense_ZeroWeightYieldsNeutral(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("RSI", strategy.Long, 0.8), Weight: 0},
	}
	agg := Condense(signals, regime.Unknown)
	assert.Equal(t, strategy.Neutral, agg.Direction)
	assert.Equal(t, 0.0, agg.Strength)
	assert.Equal(t, 0.0, agg.Consensus)
}

func TestCondense_EpsilonForcesNeutral(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("RSI", strategy.Long, 0.04), Weight: 1},
	}
	agg := Condense(signals, regime.Unknown)
	assert.Equal(t, strategy.Neutral, agg.Direction)
}

func TestCondense_TrendFollowingFavoredInTrendingRegime(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("MACD-Histogram", strategy.Long, 0.5), Weight: 1},
		{Signal: sig("RSI", strategy.Short, -0.5), Weight: 1},
	}

	aggTrending := Condense(signals, regime.TrendingBull)
	aggRanging := Condense(signals, regime.Ranging)

	// in a trending regime MACD (trend-following) outweighs RSI, tipping
	// the aggregate long; in a ranging regime RSI (mean-reversion)
	// outweighs MACD, tipping it short.
	assert.Equal(t, strategy.Long, aggTrending.Direction)
	assert.Equal(t, strategy.Short, aggRanging.Direction)
}

func TestCondense_ContributingPreservesOrder(t *testing.T) {
	signals := []Weighted{
		{Signal: sig("RSI", strategy.Long, 0.1), Weight: 1},
		{Signal: sig("MACD-Histogram", strategy.Short, -0.1), Weight: 1},
		{Signal: sig("Bollinger-Bands", strategy.Neutral, 0), Weight: 1},
	}
	agg := Condense(signals, regime.Unknown)
	assert.Equal(t, "RSI", agg.Contributing[0].StrategyName)
	assert.Equal(t, "MACD-Histogram", agg.Contributing[1].StrategyName)
	assert.Equal(t, "Bollinger-Bands", agg.Contributing[2].StrategyName)
}
