package decision

import (
	"math"
	"time"

	"github.com/riftlabs/decisioncore/internal/condenser"
	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

// Thresholds and risk multipliers the generator applies. These match the
// pipeline's fixed defaults; theta_conf is pinned at 0.60 (see DESIGN.md's
// open-question resolution) rather than exposed as a tunable.
const (
	thetaStrength = 0.0
	thetaConf     = 0.60
	stopLossATR   = 2.0
	takeProfitATR = 3.0
)

// Generator converts an AggregatedSignal into a Decision.
type Generator struct{}

// NewGenerator builds a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a Decision from agg evaluated at lastCandle, using atr
// (ATR(14) at the same bar) to size stop-loss/take-profit, and timeframe
// to compute valid_until = asOf + one bar.
func (g *Generator) Generate(agg condenser.AggregatedSignal, lastCandle market.Candle, atr float64, asOf time.Time, timeframe time.Duration) Decision {
	confidence := clamp(0.6*math.Abs(agg.Strength)+0.4*agg.Consensus, 0, 1)
	validUntil := asOf.Add(timeframe)

	action := Hold
	switch agg.Direction {
	case strategy.Long:
		if math.Abs(agg.Strength) >= thetaStrength && confidence >= thetaConf {
			action = Buy
		}
	case strategy.Short:
		if math.Abs(agg.Strength) >= thetaStrength && confidence >= thetaConf {
			action = Sell
		}
	}

	d := Decision{
		Action:     action,
		Confidence: confidence,
		ValidUntil: validUntil,
	}

	switch action {
	case Buy:
		entry := lastCandle.Close
		stop := entry - stopLossATR*atr
		target := entry + takeProfitATR*atr
		d.EntryPrice = &entry
		d.StopLoss = &stop
		d.TakeProfit = &target
		d.Invalidation = []Condition{
			{Kind: PriceBelow, Operands: map[string]interface{}{"price": stop}},
			{Kind: TimeElapsed, Operands: map[string]interface{}{"valid_until": validUntil}},
		}
	case Sell:
		entry := lastCandle.Close
		stop := entry + stopLossATR*atr
		target := entry - takeProfitATR*atr
		d.EntryPrice = &entry
		d.StopLoss = &stop
		d.TakeProfit = &target
		d.Invalidation = []Condition{
			{Kind: PriceAbove, Operands: map[string]interface{}{"price": stop}},
			{Kind: TimeElapsed, Operands: map[string]interface{}{"valid_until": validUntil}},
		}
	default:
		d.Invalidation = []Condition{
			{Kind: TimeElapsed, Operands: map[string]interface{}{"valid_until": validUntil}},
		}
	}

	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
