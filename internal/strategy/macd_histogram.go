package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
)

const (
	macdFast             = 12
	macdSlow             = 26
	macdSignal           = 9
	macdScaleWindow      = 20
	macdDivergenceWindow = 10
)

// MACDHistogramStrategy trades crossings of the MACD histogram through
// zero, scaled by its own recent volatility, boosted on price/MACD
// divergence.
type MACDHistogramStrategy struct{}

// NewMACDHistogramStrategy builds the MACD-Histogram trend-following
// strategy.
func NewMACDHistogramStrategy() *MACDHistogramStrategy {
	return &MACDHistogramStrategy{}
}

// Metadata implements Strategy.
func (s *MACDHistogramStrategy) Metadata() Metadata {
	return Metadata{
		Name:            "MACD-Histogram",
		Description:     "MACD(12,26,9) histogram zero-crossing with divergence boost",
		RequiredHistory: macdSlow + macdSignal + macdDivergenceWindow,
		DefaultWeight:   1.0,
	}
}

// RequiredHistory implements Strategy.
func (s *MACDHistogramStrategy) RequiredHistory() int {
	return macdSlow + macdSignal + macdDivergenceWindow
}

// Evaluate implements Strategy.
func (s *MACDHistogramStrategy) Evaluate(ctx context.Context, series market.CandleSeries) Signal {
	meta := s.Metadata()
	asOf, _ := series.Latest()

	if series.Len() < meta.RequiredHistory {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	closes := series.Closes()
	_, _, histogram := indicators.MACD(closes, macdFast, macdSlow, macdSignal)

	n := len(histogram)
	h0 := histogram[n-1]
	h1 := histogram[n-2]
	if math.IsNaN(h0) || math.IsNaN(h1) {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	k := rollingMeanAbsHistogram(histogram, macdScaleWindow)
	if k == 0 {
		k = 1
	}

	sig := Signal{
		StrategyName: meta.Name,
		AsOf:         asOf.OpenTime,
		Reasons:      []string{fmt.Sprintf("MACD histogram = %.4f (prev %.4f)", h0, h1)},
	}

	// A crossing requires the histogram to actually change sign: zero on
	// either bar is a flat reading, not a crossing (strictly < / > on both
	// sides of the zero line).
	switch {
	case h1 < 0 && h0 > 0:
		sig.Direction = Long
		sig.Strength = clamp(math.Abs(h0)/k, 0, 1)
		if bullishDivergence(closes, histogram, macdDivergenceWindow) {
			sig.Strength = clamp(sig.Strength*1.2, 0, 1)
			sig.Reasons = append(sig.Reasons, "bullish price/MACD divergence")
		}
	case h1 > 0 && h0 < 0:
		sig.Direction = Short
		sig.Strength = -clamp(math.Abs(h0)/k, 0, 1)
	default:
		sig.Direction = Neutral
		sig.Strength = 0
	}
	sig.Confidence = math.Abs(sig.Strength)

	return sig
}

// rollingMeanAbsHistogram returns the mean absolute value of the last
// `window` defined histogram samples ending at the series' last index,
// used to scale a crossing's strength against recent typical magnitude.
func rollingMeanAbsHistogram(histogram []float64, window int) float64 {
	var sum float64
	count := 0
	for i := len(histogram) - 1; i >= 0 && count < window; i-- {
		if math.IsNaN(histogram[i]) {
			continue
		}
		sum += math.Abs(histogram[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// bullishDivergence reports whether price made a lower low over the last
// `window` bars while the MACD histogram made a higher low, a classic
// bullish divergence signal.
func bullishDivergence(closes, histogram []float64, window int) bool {
	n := len(closes)
	if n < window+1 {
		return false
	}
	start := n - window

	priceLowIdx, histLowIdx := start, start
	for i := start; i < n; i++ {
		if closes[i] < closes[priceLowIdx] {
			priceLowIdx = i
		}
		if !math.IsNaN(histogram[i]) && histogram[i] < histogram[histLowIdx] {
			histLowIdx = i
		}
	}

	return priceLowIdx > start && closes[priceLowIdx] < closes[start] && histogram[histLowIdx] > histogram[start]
}
