package strategy

import (
	"time"

	"github.com/riftlabs/decisioncore/internal/market"
)

func buildSeries(instrument market.Instrument, closes []float64) market.CandleSeries {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, len(closes))
	for i, c := range closes {
		candles[i] = market.Candle{
			Instrument: instrument,
			OpenTime:   base.Add(time.Duration(i) * time.Hour),
			Open:       c,
			High:       c + 0.5,
			Low:        c - 0.5,
			Close:      c,
			Volume:     100,
		}
	}
	return market.CandleSeries{Instrument: instrument, Timeframe: "1h", Candles: candles}
}
