package decision

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftlabs/decisioncore/internal/condenser"
	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/regime"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

func candleAt(close float64, t time.Time) market.Candle {
	return market.Candle{Instrument: "BTCUSDT", OpenTime: t, Open: close, High: close + 1, Low: close - 1, Close: close}
}

func TestGenerator_BuySizesRiskFromATR(t *testing.T) {
	g := NewGenerator()
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	agg := condenser.AggregatedSignal{Direction: strategy.Long, Strength: 0.8, Consensus: 1.0, Regime: regime.TrendingBull}

	d := g.Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	require.Equal(t, Buy, d.Action)
	require.NotNil(t, d.EntryPrice)
	require.NotNil(t, d.StopLoss)
	require.NotNil(t, d.TakeProfit)
	assert.Equal(t, 10000.0, *d.EntryPrice)
	assert.Equal(t, 9800.0, *d.StopLoss)
	assert.Equal(t, 10300.0, *d.TakeProfit)
	assert.True(t, d.ValidUntil.After(asOf))
	assert.GreaterOrEqual(t, d.Confidence, 0.6)
}

func TestGenerator_SellMirrorsBuy(t *testing.T) {
	g := NewGenerator()
	asOf := time.Now()
	agg := condenser.AggregatedSignal{Direction: strategy.Short, Strength: -0.8, Consensus: 1.0, Regime: regime.TrendingBear}

	d := g.Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	require.Equal(t, Sell, d.Action)
	assert.Equal(t, 10200.0, *d.StopLoss)
	assert.Equal(t, 9700.0, *d.TakeProfit)
	assert.Equal(t, -1.0, math.Copysign(1, *d.TakeProfit-*d.EntryPrice))
}

func TestGenerator_LowConfidenceYieldsHold(t *testing.T) {
	g := NewGenerator()
	asOf := time.Now()
	agg := condenser.AggregatedSignal{Direction: strategy.Long, Strength: 0.1, Consensus: 0.2}

	d := g.Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	assert.Equal(t, Hold, d.Action)
	assert.Nil(t, d.EntryPrice)
	require.Len(t, d.Invalidation, 1)
	assert.Equal(t, TimeElapsed, d.Invalidation[0].Kind)
}

func TestGenerator_NeutralYieldsHold(t *testing.T) {
	g := NewGenerator()
	asOf := time.Now()
	agg := condenser.AggregatedSignal{Direction: strategy.Neutral, Strength: 0, Consensus: 0}

	d := g.Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	assert.Equal(t, Hold, d.Action)
	assert.Equal(t, 0.0, d.Confidence)
}

func TestGenerator_ValidUntilIsOneBarAhead(t *testing.T) {
	g := NewGenerator()
	asOf := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	agg := condenser.AggregatedSignal{Direction: strategy.Neutral}

	d := g.Generate(agg, candleAt(100, asOf), 1, asOf, time.Hour)
	assert.Equal(t, asOf.Add(time.Hour), d.ValidUntil)
}
