package indicators

import (
	"github.com/cinar/indicator/v2/momentum"
	"github.com/rs/zerolog/log"

	"github.com/riftlabs/decisioncore/internal/market"
)

// DefaultSMAPeriod, DefaultEMAPeriod, DefaultRSIPeriod, DefaultADXPeriod are
// the windows used when a caller doesn't request a specific one.
const (
	DefaultSMAPeriod = 20
	DefaultEMAPeriod = 20
	DefaultRSIPeriod = 14
	DefaultADXPeriod = 14
)

// Snapshot is the raw indicator catalogue for one candle series, exposed
// read-only for operator diagnostics. Unlike the strategies, which only see
// the Indicator Kernel's pure functions through Evaluate, a Snapshot lets an
// operator inspect every series directly.
type Snapshot struct {
	Instrument     market.Instrument
	SMA            []float64
	EMA            []float64
	RSI            []float64
	MACDLine       []float64
	MACDSignal     []float64
	MACDHistogram  []float64
	BollingerUpper []float64
	BollingerMid   []float64
	BollingerLower []float64
	ADX            []float64
	ATR            []float64
	// RSILibrary is RSI recomputed via cinar/indicator/v2's momentum package,
	// independent of the kernel's hand-rolled Wilder implementation. It lets
	// an operator cross-check the kernel's RSI (the one strategies actually
	// evaluate against) for drift against a third-party reference.
	RSILibrary []float64
}

// Service computes diagnostic indicator snapshots for the HTTP surface's
// read-only indicators endpoint.
type Service struct{}

// NewService constructs a Service. It holds no state; every call is a pure
// function of the candle series passed to Calculate.
func NewService() *Service {
	log.Debug().Msg("indicator diagnostic service initialized")
	return &Service{}
}

// Calculate builds a full Snapshot for series using the hand-rolled
// Indicator Kernel; only RSILibrary comes from cinar/indicator. It returns
// market.ErrEmptySeries if series has no candles.
func (s *Service) Calculate(series market.CandleSeries) (Snapshot, error) {
	if series.Len() == 0 {
		return Snapshot{}, market.ErrEmptySeries
	}

	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()

	macdLine, macdSignal, macdHist := MACD(closes, 12, 26, 9)
	upper, mid, lower := BollingerBands(closes, 20, 2.0)

	return Snapshot{
		Instrument:     series.Instrument,
		SMA:            SMA(closes, DefaultSMAPeriod),
		EMA:            EMA(closes, DefaultEMAPeriod),
		RSI:            RSI(closes, DefaultRSIPeriod),
		MACDLine:       macdLine,
		MACDSignal:     macdSignal,
		MACDHistogram:  macdHist,
		BollingerUpper: upper,
		BollingerMid:   mid,
		BollingerLower: lower,
		ADX:            ADX(highs, lows, closes, DefaultADXPeriod),
		ATR:            ATR(highs, lows, closes, DefaultADXPeriod),
		RSILibrary:     cinarRSI(closes, DefaultRSIPeriod),
	}, nil
}

// cinarRSI runs cinar/indicator/v2's channel-pipeline RSI over closes. Its
// output is shorter than closes (no leading NaN padding), so it is left
// un-aligned for the caller to interpret positionally from the series tail.
func cinarRSI(closes []float64, period int) []float64 {
	if period < 1 || period > len(closes) {
		return nil
	}

	in := make(chan float64, len(closes))
	for _, c := range closes {
		in <- c
	}
	close(in)

	out := momentum.NewRsiWithPeriod[float64](period).Compute(in)

	var values []float64
	for v := range out {
		values = append(values, v)
	}
	return values
}
