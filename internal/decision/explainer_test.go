package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftlabs/decisioncore/internal/condenser"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

func TestExplainer_SummaryNamesActionAndTopReason(t *testing.T) {
	e := NewExplainer()
	asOf := time.Now()

	agg := condenser.AggregatedSignal{
		Direction: strategy.Long,
		Strength:  0.7,
		Consensus: 1.0,
		Contributing: []strategy.Signal{
			{StrategyName: "RSI", Direction: strategy.Long, Strength: 0.7, Confidence: 0.7, Reasons: []string{"RSI(14) = 25.00"}},
			{StrategyName: "MACD-Histogram", Direction: strategy.Long, Strength: 0.5, Confidence: 0.5, Reasons: []string{"MACD histogram = 1.2000 (prev -0.3000)"}},
		},
		EffectiveWeights: []float64{1, 1},
	}

	d := NewGenerator().Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)
	exp := e.Explain("BTCUSDT", d, agg)

	assert.Contains(t, exp.Summary, "BUY")
	assert.Contains(t, exp.Summary, "BTCUSDT")
	require.NotEmpty(t, exp.Reasons)
	assert.Contains(t, exp.Reasons[0], "RSI")
}

func TestExplainer_WarningsMatchInvalidationConditions(t *testing.T) {
	e := NewExplainer()
	asOf := time.Now()
	agg := condenser.AggregatedSignal{Direction: strategy.Long, Strength: 0.7, Consensus: 1.0}
	d := NewGenerator().Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	exp := e.Explain("BTCUSDT", d, agg)
	assert.Len(t, exp.Warnings, len(d.Invalidation))
}

func TestExplainer_LowConsensusWarning(t *testing.T) {
	e := NewExplainer()
	asOf := time.Now()
	agg := condenser.AggregatedSignal{Direction: strategy.Long, Strength: 0.7, Consensus: 0.3}
	d := NewGenerator().Generate(agg, candleAt(10000, asOf), 100, asOf, time.Hour)

	exp := e.Explain("BTCUSDT", d, agg)
	assert.Contains(t, exp.Warnings, "low_consensus")
}
