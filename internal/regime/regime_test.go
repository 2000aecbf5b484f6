package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/riftlabs/decisioncore/internal/market"
)

func buildTrendingSeries(n int, slope float64) market.CandleSeries {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]market.Candle, n)
	price := 1000.0
	for i := 0; i < n; i++ {
		price += slope
		candles[i] = market.Candle{
			Instrument: "BTCUSDT",
			OpenTime:   base.Add(time.Duration(i) * time.Hour),
			Open:       price,
			High:       price + 2,
			Low:        price - 2,
			Close:      price,
			Volume:     100,
		}
	}
	return market.CandleSeries{Instrument: "BTCUSDT", Timeframe: "1h", Candles: candles}
}

func TestDetect_InsufficientHistoryIsUnknown(t *testing.T) {
	series := buildTrendingSeries(10, 1)
	assert.Equal(t, Unknown, Detect(series))
}

func TestDetect_StrongUptrendIsBull(t *testing.T) {
	series := buildTrendingSeries(60, 5)
	regime := Detect(series)
	assert.Contains(t, []Regime{TrendingBull, Volatile}, regime)
}

func TestDetect_FlatSeriesIsRangingOrUnknown(t *testing.T) {
	series := buildTrendingSeries(60, 0)
	regime := Detect(series)
	assert.Contains(t, []Regime{Ranging, Unknown}, regime)
}
