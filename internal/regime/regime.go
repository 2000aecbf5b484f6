// Package regime classifies the current market behavior from ADX/ATR so the
// condenser can modulate strategy weights accordingly.
package regime

import (
	"math"

	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
)

// Regime is a discrete classification of current market behavior.
type Regime string

const (
	TrendingBull Regime = "TRENDING_BULL"
	TrendingBear Regime = "TRENDING_BEAR"
	Ranging      Regime = "RANGING"
	Volatile     Regime = "VOLATILE"
	Unknown      Regime = "UNKNOWN"
)

const (
	adxPeriod            = 14
	atrPeriod            = 14
	trendingADXThreshold = 25.0
	volatileATRPercent   = 0.03
	directionLookback    = 10
)

// Detect classifies series' regime at its last candle using ADX(14) for
// trend strength, a short lookback for trend direction, and ATR(14) as a
// percent of price for volatility. Returns UNKNOWN if the series is too
// short to compute either indicator.
func Detect(series market.CandleSeries) Regime {
	if series.Len() < adxPeriod*2 || series.Len() < atrPeriod+1 || series.Len() < directionLookback+1 {
		return Unknown
	}

	highs, lows, closes := series.Highs(), series.Lows(), series.Closes()

	adx := indicators.ADX(highs, lows, closes, adxPeriod)
	atr := indicators.ATR(highs, lows, closes, atrPeriod)

	lastADX := adx[len(adx)-1]
	lastATR := atr[len(atr)-1]
	lastClose := closes[len(closes)-1]

	if math.IsNaN(lastADX) || math.IsNaN(lastATR) || lastClose == 0 {
		return Unknown
	}

	atrPercent := lastATR / lastClose

	if lastADX >= trendingADXThreshold {
		prior := closes[len(closes)-1-directionLookback]
		switch {
		case lastClose > prior:
			return TrendingBull
		case lastClose < prior:
			return TrendingBear
		default:
			return Ranging
		}
	}

	if atrPercent >= volatileATRPercent {
		return Volatile
	}

	return Ranging
}
