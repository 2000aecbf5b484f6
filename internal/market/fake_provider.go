package market

import (
	"context"
	"time"
)

// FakeProvider is an in-memory CandleProvider for tests. Series are keyed
// by instrument; timeframe is ignored since tests only need one series per
// instrument at a time.
type FakeProvider struct {
	Series map[Instrument]CandleSeries
	Err    error
}

// NewFakeProvider builds a FakeProvider seeded with the given series.
func NewFakeProvider(series ...CandleSeries) *FakeProvider {
	p := &FakeProvider{Series: make(map[Instrument]CandleSeries, len(series))}
	for _, s := range series {
		p.Series[s.Instrument] = s
	}
	return p
}

// Candles returns up to `lookbackBars` candles of the stored series for
// instrument ending at or before endTS, or Err/ErrDataUnavailable if none
// is registered. A zero endTS is treated as "no upper bound", matching the
// behavior tests relied on before endTS existed.
func (p *FakeProvider) Candles(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) (CandleSeries, error) {
	if p.Err != nil {
		return CandleSeries{}, p.Err
	}
	series, ok := p.Series[instrument]
	if !ok || len(series.Candles) == 0 {
		return CandleSeries{}, ErrDataUnavailable
	}

	candles := series.Candles
	if !endTS.IsZero() {
		cutoff := 0
		for cutoff < len(candles) && !candles[cutoff].OpenTime.After(endTS) {
			cutoff++
		}
		candles = candles[:cutoff]
	}
	if len(candles) == 0 {
		return CandleSeries{}, ErrDataUnavailable
	}

	if lookbackBars > 0 && lookbackBars < len(candles) {
		candles = candles[len(candles)-lookbackBars:]
	}
	return CandleSeries{Instrument: instrument, Timeframe: timeframe, Candles: candles}, nil
}
