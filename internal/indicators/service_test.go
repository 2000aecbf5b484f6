package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/riftlabs/decisioncore/internal/market"
)

func TestNewService(t *testing.T) {
	service := NewService()
	if service == nil {
		t.Fatal("Expected non-nil service")
	}
}

func buildDiagnosticSeries(n int) market.CandleSeries {
	candles := make([]market.Candle, n)
	price := 100.0
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price += 0.5
		candles[i] = market.Candle{
			Instrument: "BTCUSDT",
			OpenTime:   base.Add(time.Duration(i) * time.Hour),
			Open:       price - 0.5,
			High:       price + 1,
			Low:        price - 1,
			Close:      price,
			Volume:     1000,
		}
	}
	return market.CandleSeries{Instrument: "BTCUSDT", Timeframe: "1h", Candles: candles}
}

func TestService_Calculate_ReturnsFullSnapshot(t *testing.T) {
	svc := NewService()
	series := buildDiagnosticSeries(60)

	snap, err := svc.Calculate(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Instrument != "BTCUSDT" {
		t.Errorf("expected instrument BTCUSDT, got %s", snap.Instrument)
	}

	for name, series := range map[string][]float64{
		"SMA":             snap.SMA,
		"EMA":             snap.EMA,
		"RSI":             snap.RSI,
		"MACDLine":        snap.MACDLine,
		"MACDSignal":      snap.MACDSignal,
		"MACDHistogram":   snap.MACDHistogram,
		"BollingerUpper":  snap.BollingerUpper,
		"BollingerMid":    snap.BollingerMid,
		"BollingerLower":  snap.BollingerLower,
		"ADX":             snap.ADX,
		"ATR":             snap.ATR,
	} {
		if len(series) != 60 {
			t.Errorf("%s: expected length 60, got %d", name, len(series))
		}
	}

	last := snap.SMA[len(snap.SMA)-1]
	if math.IsNaN(last) {
		t.Error("expected SMA to be past warm-up by the end of a 60-candle series")
	}

	if len(snap.RSILibrary) == 0 {
		t.Error("expected RSILibrary to be populated by the cinar/indicator cross-check")
	}
}

func TestCinarRSI_ShorterPeriodThanSeriesProducesValues(t *testing.T) {
	series := buildDiagnosticSeries(30)
	values := cinarRSI(series.Closes(), DefaultRSIPeriod)
	if len(values) == 0 {
		t.Fatal("expected at least one RSI value")
	}
	for _, v := range values {
		if v < 0 || v > 100 {
			t.Errorf("RSI value %f out of [0,100] range", v)
		}
	}
}

func TestCinarRSI_PeriodLargerThanSeriesReturnsNil(t *testing.T) {
	series := buildDiagnosticSeries(5)
	if values := cinarRSI(series.Closes(), 14); values != nil {
		t.Errorf("expected nil, got %v", values)
	}
}

func TestService_Calculate_EmptySeriesReturnsError(t *testing.T) {
	svc := NewService()
	_, err := svc.Calculate(market.CandleSeries{Instrument: "BTCUSDT"})
	if err != market.ErrEmptySeries {
		t.Fatalf("expected ErrEmptySeries, got %v", err)
	}
}
