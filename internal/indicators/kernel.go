// Package indicators provides the deterministic numeric building blocks the
// decision pipeline is built on: a pure kernel of technical indicators, plus
// a thin Service wrapper (service.go) that bundles the kernel's series into
// a diagnostic snapshot, with a cinar/indicator RSI alongside for
// cross-checking.
package indicators

import "math"

// Kernel functions never mutate their input and always return a slice the
// same length as the input, with math.NaN() at indices that fall inside the
// indicator's warm-up window. Equal input always produces bit-identical
// output.

// SMA returns the simple moving average over the given period. The first
// period-1 values are NaN (warm-up length = period-1).
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || period > len(values) {
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA returns the exponential moving average over the given period, seeded
// with the SMA of the first period closes (alpha = 2/(period+1)). Warm-up
// length = period-1, matching SMA's.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || period > len(values) {
		return out
	}

	alpha := 2.0 / float64(period+1)

	seedSum := 0.0
	for i := 0; i < period; i++ {
		seedSum += values[i]
	}
	prev := seedSum / float64(period)
	out[period-1] = prev

	for i := period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// RSI returns Wilder's Relative Strength Index over the given period.
// Warm-up length = period (the first valid index is period, since the
// seed average needs `period` price changes).
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || len(closes) < period+1 {
		return out
	}

	gainSum, lossSum := 0.0, 0.0
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum += -delta
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	out[period] = rsiFromAverages(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the MACD line (EMA(fast) - EMA(slow)), its signal line
// (EMA(signal) of the MACD line), and the histogram (macd - signal). Warm-up
// length for the histogram is slow-1+signal-1.
func MACD(closes []float64, fast, slow, signal int) (macdLine, signalLine, histogram []float64) {
	n := len(closes)
	macdLine = make([]float64, n)
	signalLine = make([]float64, n)
	histogram = make([]float64, n)

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)

	for i := 0; i < n; i++ {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			macdLine[i] = math.NaN()
		} else {
			macdLine[i] = fastEMA[i] - slowEMA[i]
		}
	}

	// Build the signal line by running EMA over the defined portion of the
	// MACD line, then re-aligning it back into the full-length slice.
	firstValid := slow - 1
	if firstValid < 0 || firstValid >= n {
		for i := range signalLine {
			signalLine[i] = math.NaN()
			histogram[i] = math.NaN()
		}
		return
	}

	defined := macdLine[firstValid:]
	signalDefined := EMA(defined, signal)

	for i := range signalLine {
		signalLine[i] = math.NaN()
		histogram[i] = math.NaN()
	}
	for i, v := range signalDefined {
		idx := firstValid + i
		signalLine[idx] = v
		if !math.IsNaN(v) && !math.IsNaN(macdLine[idx]) {
			histogram[idx] = macdLine[idx] - v
		}
	}
	return
}

// BollingerBands returns the upper, middle (SMA), and lower bands over the
// given period using numStdDev sample standard deviations with Bessel's
// correction. Warm-up length = period-1.
func BollingerBands(closes []float64, period int, numStdDev float64) (upper, middle, lower []float64) {
	n := len(closes)
	upper = make([]float64, n)
	middle = make([]float64, n)
	lower = make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i], middle[i], lower[i] = math.NaN(), math.NaN(), math.NaN()
	}
	if period < 2 || period > n {
		return
	}

	middle = SMA(closes, period)
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean := middle[i]
		var sumSq float64
		for _, v := range window {
			d := v - mean
			sumSq += d * d
		}
		variance := sumSq / float64(period-1)
		stdDev := math.Sqrt(variance)
		upper[i] = mean + numStdDev*stdDev
		lower[i] = mean - numStdDev*stdDev
	}
	return
}

// TrueRange returns the per-bar true range given aligned high/low/close
// slices. TrueRange[0] is NaN (no previous close to compare against).
func TrueRange(high, low, close []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < n; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// ATR returns Wilder-smoothed Average True Range over the given period.
// Warm-up length = period (first valid index requires `period` true-range
// samples, themselves requiring one prior close each).
func ATR(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || n < period+1 {
		return out
	}

	tr := TrueRange(high, low, close)
	smoothed := wilderSmooth(tr, period, 1)
	return smoothed
}

// wilderSmooth applies Wilder's smoothing to data starting at data[skip],
// treating data[0:skip] as unavailable (e.g. TrueRange's leading NaN).
func wilderSmooth(data []float64, period, skip int) []float64 {
	n := len(data)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if n-skip < period {
		return out
	}

	sum := 0.0
	for i := skip; i < skip+period; i++ {
		sum += data[i]
	}
	prev := sum / float64(period)
	seedIdx := skip + period - 1
	out[seedIdx] = prev

	for i := seedIdx + 1; i < n; i++ {
		prev = (prev*float64(period-1) + data[i]) / float64(period)
		out[i] = prev
	}
	return out
}

// ADX returns Wilder's Average Directional Index over the given period,
// grounded on the same +DM/-DM/Wilder-smoothing scheme as ATR. Warm-up
// length is roughly 2*period (the DX series itself needs `period` smoothed
// +DI/-DI samples before it can be smoothed again).
func ADX(high, low, close []float64, period int) []float64 {
	n := len(close)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 1 || n < period*2 {
		return out
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	tr := TrueRange(high, low, close)
	smoothTR := wilderSmooth(tr, period, 1)
	smoothPlusDM := wilderSmooth(plusDM, period, 1)
	smoothMinusDM := wilderSmooth(minusDM, period, 1)

	dx := make([]float64, n)
	for i := range dx {
		dx[i] = math.NaN()
	}
	for i := period; i < n; i++ {
		if math.IsNaN(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		plusDI := 100 * smoothPlusDM[i] / smoothTR[i]
		minusDI := 100 * smoothMinusDM[i] / smoothTR[i]
		diSum := plusDI + minusDI
		if diSum != 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / diSum
		} else {
			dx[i] = 0
		}
	}

	return wilderSmooth(dx, period, period)
}

// ZScore returns the rolling z-score of each value against the trailing
// window of the given period (sample std-dev, Bessel-corrected). Warm-up
// length = period-1.
func ZScore(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	if period < 2 || period > n {
		return out
	}

	mean := SMA(values, period)
	for i := period - 1; i < n; i++ {
		window := values[i-period+1 : i+1]
		m := mean[i]
		var sumSq float64
		for _, v := range window {
			d := v - m
			sumSq += d * d
		}
		stdDev := math.Sqrt(sumSq / float64(period-1))
		if stdDev == 0 {
			out[i] = 0
			continue
		}
		out[i] = (values[i] - m) / stdDev
	}
	return out
}

// VWAP returns the cumulative volume-weighted average price, typical-price
// based, accumulated from the start of the series. No warm-up: VWAP[0] is
// defined whenever volume[0] > 0.
func VWAP(high, low, close, volume []float64) []float64 {
	n := len(close)
	out := make([]float64, n)
	var cumPV, cumVol float64
	for i := 0; i < n; i++ {
		typical := (high[i] + low[i] + close[i]) / 3
		cumPV += typical * volume[i]
		cumVol += volume[i]
		if cumVol == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = cumPV / cumVol
	}
	return out
}
