package decision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riftlabs/decisioncore/internal/condenser"
)

const topReasonsN = 3

// Explainer renders a Decision and its contributing signals into a short,
// deterministic, ASCII-only explanation.
type Explainer struct{}

// NewExplainer builds an Explainer.
func NewExplainer() *Explainer {
	return &Explainer{}
}

type rankedReason struct {
	text  string
	score float64
}

// Explain builds the Explanation for d given the AggregatedSignal it was
// derived from and the instrument it concerns.
func (e *Explainer) Explain(instrument string, d Decision, agg condenser.AggregatedSignal) Explanation {
	ranked := make([]rankedReason, 0, len(agg.Contributing))
	for i, sig := range agg.Contributing {
		if len(sig.Reasons) == 0 {
			continue
		}
		weight := 0.0
		if i < len(agg.EffectiveWeights) {
			weight = agg.EffectiveWeights[i]
		}
		score := weight * sig.Confidence
		ranked = append(ranked, rankedReason{
			text:  fmt.Sprintf("%s: %s", sig.StrategyName, sig.Reasons[0]),
			score: score,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := topReasonsN
	if len(ranked) < n {
		n = len(ranked)
	}
	reasons := make([]string, n)
	for i := 0; i < n; i++ {
		reasons[i] = ranked[i].text
	}

	warnings := make([]string, 0, len(d.Invalidation))
	for _, cond := range d.Invalidation {
		warnings = append(warnings, "Invalidate if "+renderCondition(cond))
	}
	switch {
	case len(agg.Contributing) > 0 && allInsufficient(agg):
		warnings = append(warnings, "insufficient_data")
	case agg.Consensus < 0.5:
		warnings = append(warnings, "low_consensus")
	}

	topReason := "no contributing signal"
	if len(ranked) > 0 {
		topReason = ranked[0].text
	}

	summary := fmt.Sprintf("%s %s with %.0f%% confidence: %s",
		d.Action, instrument, d.Confidence*100, topReason)

	return Explanation{Summary: summary, Reasons: reasons, Warnings: warnings}
}

func allInsufficient(agg condenser.AggregatedSignal) bool {
	for _, sig := range agg.Contributing {
		found := false
		for _, r := range sig.Reasons {
			if r == "insufficient_data" {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func renderCondition(c Condition) string {
	switch c.Kind {
	case PriceBelow:
		return fmt.Sprintf("price drops below %.2f", c.Operands["price"])
	case PriceAbove:
		return fmt.Sprintf("price rises above %.2f", c.Operands["price"])
	case IndicatorExceeds:
		return fmt.Sprintf("%v exceeds %v", c.Operands["indicator"], c.Operands["threshold"])
	case TimeElapsed:
		return fmt.Sprintf("no action is taken by %v", c.Operands["valid_until"])
	default:
		return strings.ToLower(string(c.Kind))
	}
}
