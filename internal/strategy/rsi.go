package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
)

const rsiPeriod = 14

// RSIStrategy flags oversold/overbought conditions using Wilder's RSI.
type RSIStrategy struct{}

// NewRSIStrategy builds the RSI mean-reversion strategy.
func NewRSIStrategy() *RSIStrategy {
	return &RSIStrategy{}
}

// Metadata implements Strategy.
func (s *RSIStrategy) Metadata() Metadata {
	return Metadata{
		Name:            "RSI",
		Description:     "Wilder RSI(14) oversold/overbought mean-reversion signal",
		RequiredHistory: rsiPeriod + 1,
		DefaultWeight:   1.0,
	}
}

// RequiredHistory implements Strategy.
func (s *RSIStrategy) RequiredHistory() int {
	return rsiPeriod + 1
}

// Evaluate implements Strategy.
func (s *RSIStrategy) Evaluate(ctx context.Context, series market.CandleSeries) Signal {
	meta := s.Metadata()
	asOf, _ := series.Latest()

	if series.Len() < meta.RequiredHistory {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	rsi := indicators.RSI(series.Closes(), rsiPeriod)
	r := rsi[len(rsi)-1]
	if math.IsNaN(r) {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	sig := Signal{
		StrategyName: meta.Name,
		AsOf:         asOf.OpenTime,
		Reasons:      []string{fmt.Sprintf("RSI(14) = %.2f", r)},
	}

	switch {
	case r < 30:
		sig.Direction = Long
		sig.Strength = clamp((30-r)/30, 0, 1)
	case r > 70:
		sig.Direction = Short
		sig.Strength = -clamp((r-70)/30, 0, 1)
	default:
		sig.Direction = Neutral
		sig.Strength = 0
	}
	sig.Confidence = math.Abs(sig.Strength)

	return sig
}
