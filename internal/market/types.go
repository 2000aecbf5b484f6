// Package market defines the candle data model the decision pipeline runs
// on and the providers/caches that serve it.
package market

import (
	"errors"
	"fmt"
	"time"
)

// Instrument identifies a tradable symbol, e.g. "BTCUSDT".
type Instrument string

// Candle is one OHLCV bar for an instrument at a fixed timeframe.
type Candle struct {
	Instrument Instrument
	OpenTime   time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
}

// Validate checks the OHLC ordering invariant: Low <= Open, Close <= High,
// and Low <= High.
func (c Candle) Validate() error {
	if c.Low > c.High {
		return fmt.Errorf("candle %s@%s: low %v exceeds high %v", c.Instrument, c.OpenTime, c.Low, c.High)
	}
	if c.Open < c.Low || c.Open > c.High {
		return fmt.Errorf("candle %s@%s: open %v outside [low %v, high %v]", c.Instrument, c.OpenTime, c.Open, c.Low, c.High)
	}
	if c.Close < c.Low || c.Close > c.High {
		return fmt.Errorf("candle %s@%s: close %v outside [low %v, high %v]", c.Instrument, c.OpenTime, c.Close, c.Low, c.High)
	}
	if c.Volume < 0 {
		return fmt.Errorf("candle %s@%s: negative volume %v", c.Instrument, c.OpenTime, c.Volume)
	}
	return nil
}

// CandleSeries is a contiguous, ascending-time run of candles for one
// instrument at one timeframe. Callers treat it as immutable once built.
type CandleSeries struct {
	Instrument Instrument
	Timeframe  string
	Candles    []Candle
}

// ErrEmptySeries is returned by accessors that require at least one candle.
var ErrEmptySeries = errors.New("market: empty candle series")

// Len returns the number of candles in the series.
func (s CandleSeries) Len() int {
	return len(s.Candles)
}

// Latest returns the most recent candle in the series.
func (s CandleSeries) Latest() (Candle, error) {
	if len(s.Candles) == 0 {
		return Candle{}, ErrEmptySeries
	}
	return s.Candles[len(s.Candles)-1], nil
}

// Closes returns the series' close prices in chronological order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs returns the series' high prices in chronological order.
func (s CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the series' low prices in chronological order.
func (s CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the series' volumes in chronological order.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// Validate checks every candle's OHLC invariant and that open times are
// strictly ascending.
func (s CandleSeries) Validate() error {
	for i, c := range s.Candles {
		if err := c.Validate(); err != nil {
			return err
		}
		if i > 0 && !c.OpenTime.After(s.Candles[i-1].OpenTime) {
			return fmt.Errorf("candle series %s: out-of-order candle at index %d (%s <= %s)",
				s.Instrument, i, c.OpenTime, s.Candles[i-1].OpenTime)
		}
	}
	return nil
}
