package market

import (
	"context"
	"errors"
	"time"
)

// ErrDataUnavailable is returned by a CandleProvider when it cannot produce
// enough history to satisfy a request, e.g. a newly listed instrument or an
// upstream outage. Callers map this to a 503 at the HTTP surface rather than
// treating it as a hard failure.
var ErrDataUnavailable = errors.New("market: candle data unavailable")

// CandleProvider supplies OHLCV history for an instrument as of a point in
// time. All implementations must return candles in ascending OpenTime
// order.
type CandleProvider interface {
	// Candles returns up to `lookbackBars` candles for instrument at the
	// given timeframe (e.g. "1h", "1d"), ending at or before endTS. It
	// returns ErrDataUnavailable if fewer candles exist at or before
	// endTS than the provider can reasonably serve.
	Candles(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) (CandleSeries, error)
}
