package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
)

const (
	bollingerPeriod      = 20
	bollingerNumStdDev   = 2.0
	bollingerMinBandwidth = 0.05 // below this, the strategy treats the market as squeezed
)

// BollingerBandsStrategy trades mean-reversion at the bands and flags
// squeezes (low bandwidth) as an explicit NEUTRAL regime marker.
type BollingerBandsStrategy struct{}

// NewBollingerBandsStrategy builds the Bollinger-Bands mean-reversion
// strategy.
func NewBollingerBandsStrategy() *BollingerBandsStrategy {
	return &BollingerBandsStrategy{}
}

// Metadata implements Strategy.
func (s *BollingerBandsStrategy) Metadata() Metadata {
	return Metadata{
		Name:            "Bollinger-Bands",
		Description:     "Bollinger Bands(20, 2) mean-reversion and squeeze detector",
		RequiredHistory: bollingerPeriod,
		DefaultWeight:   1.0,
	}
}

// RequiredHistory implements Strategy.
func (s *BollingerBandsStrategy) RequiredHistory() int {
	return bollingerPeriod
}

// Evaluate implements Strategy.
func (s *BollingerBandsStrategy) Evaluate(ctx context.Context, series market.CandleSeries) Signal {
	meta := s.Metadata()
	asOf, _ := series.Latest()

	if series.Len() < meta.RequiredHistory {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	upper, middle, lower := indicators.BollingerBands(series.Closes(), bollingerPeriod, bollingerNumStdDev)
	last := len(upper) - 1
	u, m, l := upper[last], middle[last], lower[last]
	if math.IsNaN(u) || math.IsNaN(m) || math.IsNaN(l) || m == 0 {
		return NeutralSignal(meta.Name, asOf.OpenTime, "insufficient_data")
	}

	close := series.Candles[last].Close
	bandwidth := (u - l) / m

	sig := Signal{
		StrategyName: meta.Name,
		AsOf:         asOf.OpenTime,
		Reasons:      []string{fmt.Sprintf("close=%.4f lower=%.4f upper=%.4f bandwidth=%.4f", close, l, u, bandwidth)},
	}

	switch {
	case bandwidth < bollingerMinBandwidth:
		sig.Direction = Neutral
		sig.Strength = 0
		sig.Confidence = 0.3
		sig.Reasons = append(sig.Reasons, "squeeze")
	case close <= l:
		sig.Direction = Long
		sig.Strength = clamp((l-close)/close, 0, 1)
		sig.Confidence = math.Abs(sig.Strength)
	case close >= u:
		sig.Direction = Short
		sig.Strength = -clamp((close-u)/close, 0, 1)
		sig.Confidence = math.Abs(sig.Strength)
	default:
		sig.Direction = Neutral
		sig.Strength = 0
		sig.Confidence = 0
	}

	return sig
}
