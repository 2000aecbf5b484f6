// Package condenser aggregates per-strategy signals into one
// AggregatedSignal using regime-modulated weights.
package condenser

import (
	"github.com/riftlabs/decisioncore/internal/regime"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

// epsilon is the tie-break band around zero weighted strength: within it,
// the aggregated direction is forced to NEUTRAL regardless of consensus.
const epsilon = 0.05

// style classifies a strategy for the regime multiplier table.
type style int

const (
	trendFollowing style = iota
	meanReversion
)

var strategyStyle = map[string]style{
	"MACD-Histogram":  trendFollowing,
	"RSI":             meanReversion,
	"Bollinger-Bands": meanReversion,
}

// AggregatedSignal is the condenser's output: one directional call backed
// by every contributing strategy signal.
type AggregatedSignal struct {
	Direction    strategy.Direction `json:"direction"`
	Strength     float64            `json:"strength"`
	Consensus    float64            `json:"consensus"`
	Regime       regime.Regime      `json:"regime"`
	Contributing []strategy.Signal  `json:"contributing"`

	// EffectiveWeights holds w_eff for each entry in Contributing, same
	// index alignment, for the Explainer's reason-ranking. Not part of
	// the wire shape; callers that need it read the struct directly.
	EffectiveWeights []float64 `json:"-"`
}

// Weighted pairs a strategy's signal with its registry weight. Callers
// build this from a strategy.Snapshot plus the evaluated signals, one per
// enabled strategy, preserving registry order.
type Weighted struct {
	Signal strategy.Signal
	Weight float64
}

// Condense aggregates signals (in registry order) using each one's base
// weight modulated by its regime multiplier.
func Condense(signals []Weighted, r regime.Regime) AggregatedSignal {
	contributing := make([]strategy.Signal, len(signals))
	for i, w := range signals {
		contributing[i] = w.Signal
	}

	var totalWeight, weightedStrength float64
	effWeights := make([]float64, len(signals))
	for i, w := range signals {
		eff := w.Weight * regimeMultiplier(w.Signal.StrategyName, r)
		effWeights[i] = eff
		totalWeight += eff
		weightedStrength += eff * w.Signal.Strength
	}

	if totalWeight == 0 {
		return AggregatedSignal{
			Direction:        strategy.Neutral,
			Strength:         0,
			Consensus:        0,
			Regime:           r,
			Contributing:     contributing,
			EffectiveWeights: effWeights,
		}
	}

	s := weightedStrength / totalWeight

	direction := strategy.Neutral
	switch {
	case s > epsilon:
		direction = strategy.Long
	case s < -epsilon:
		direction = strategy.Short
	}

	var agreeWeight float64
	if direction != strategy.Neutral {
		for i, w := range signals {
			if w.Signal.Direction == direction {
				agreeWeight += effWeights[i]
			}
		}
	}
	consensus := 0.0
	if direction != strategy.Neutral {
		consensus = agreeWeight / totalWeight
	}

	return AggregatedSignal{
		Direction:        direction,
		Strength:         s,
		Consensus:        consensus,
		Regime:           r,
		Contributing:     contributing,
		EffectiveWeights: effWeights,
	}
}

// regimeMultiplier looks up the static regime multiplier for a strategy by
// name and style: trend-following strategies are favored in trending
// regimes and discounted while ranging; mean-reversion strategies the
// inverse. Unclassified strategies and UNKNOWN/VOLATILE regimes get a
// neutral multiplier of 1.
func regimeMultiplier(strategyName string, r regime.Regime) float64 {
	st, ok := strategyStyle[strategyName]
	if !ok {
		return 1
	}

	switch r {
	case regime.TrendingBull, regime.TrendingBear:
		if st == trendFollowing {
			return 1.5
		}
		return 0.5
	case regime.Ranging:
		if st == trendFollowing {
			return 0.5
		}
		return 1.5
	default: // VOLATILE, UNKNOWN
		return 1
	}
}
