// Package recommend orchestrates the decision pipeline end to end: it binds
// a market.CandleProvider and a strategy.Registry through the condenser and
// decision packages into per-instrument Recommendations, and adds the
// caching and scheduling machinery that make that affordable to run on a
// schedule against many instruments.
package recommend

import (
	"time"

	"github.com/riftlabs/decisioncore/internal/condenser"
	"github.com/riftlabs/decisioncore/internal/decision"
	"github.com/riftlabs/decisioncore/internal/market"
)

// EngineVersion is stamped onto every Recommendation this build produces. It
// changes whenever the decision math (condenser weights, generator
// thresholds, strategy set) changes in a way that could alter output for
// identical input.
const EngineVersion = "1.0.0"

// Recommendation is the pipeline's complete output for one instrument at one
// point in time: the Decision, the AggregatedSignal it was derived from, and
// its rendered Explanation.
type Recommendation struct {
	Instrument    market.Instrument          `json:"instrument"`
	AsOf          time.Time                  `json:"as_of"`
	Decision      decision.Decision          `json:"decision"`
	Aggregated    condenser.AggregatedSignal `json:"aggregated"`
	Explanation   decision.Explanation       `json:"explanation"`
	EngineVersion string                     `json:"engine_version"`
}
