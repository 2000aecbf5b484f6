package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/riftlabs/decisioncore/internal/market"
)

const defaultIndicatorWindow = 90

// indicatorsResponse is the wire shape for the diagnostic indicators
// endpoint. It mirrors indicators.Snapshot field-for-field so an operator
// can line the raw series up against a strategy's reasoning.
type indicatorsResponse struct {
	Instrument     market.Instrument `json:"instrument"`
	SMA            []float64         `json:"sma"`
	EMA            []float64         `json:"ema"`
	RSI            []float64         `json:"rsi"`
	MACDLine       []float64         `json:"macd_line"`
	MACDSignal     []float64         `json:"macd_signal"`
	MACDHistogram  []float64         `json:"macd_histogram"`
	BollingerUpper []float64         `json:"bollinger_upper"`
	BollingerMid   []float64         `json:"bollinger_mid"`
	BollingerLower []float64         `json:"bollinger_lower"`
	ADX            []float64         `json:"adx"`
	ATR            []float64         `json:"atr"`
	RSILibrary     []float64         `json:"rsi_library"`
}

// handleGetIndicators serves the raw indicator-kernel series for
// :instrument over a window of recent candles, plus a cinar/indicator RSI
// (rsi_library) for comparison. It is read-only and independent of the
// strategies the engine actually evaluates; it exists so an operator can
// sanity-check a strategy's numbers against a third-party RSI.
func (s *Server) handleGetIndicators(c *gin.Context) {
	instrument := c.Param("instrument")
	if !s.isTracked(instrument) {
		writeError(c, ErrNotTracked)
		return
	}

	window := defaultIndicatorWindow
	if raw := c.Query("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, ErrBadRequest{Msg: "window must be a positive integer"})
			return
		}
		window = n
	}

	asOf, err := parseAsOf(c)
	if err != nil {
		writeError(c, err)
		return
	}

	series, err := s.deps.Provider.Candles(c.Request.Context(), market.Instrument(instrument), s.deps.Timeframe, asOf, window)
	if err != nil {
		writeError(c, err)
		return
	}

	snap, err := s.deps.Indicators.Calculate(series)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, indicatorsResponse{
		Instrument:     snap.Instrument,
		SMA:            snap.SMA,
		EMA:            snap.EMA,
		RSI:            snap.RSI,
		MACDLine:       snap.MACDLine,
		MACDSignal:     snap.MACDSignal,
		MACDHistogram:  snap.MACDHistogram,
		BollingerUpper: snap.BollingerUpper,
		BollingerMid:   snap.BollingerMid,
		BollingerLower: snap.BollingerLower,
		ADX:            snap.ADX,
		ATR:            snap.ATR,
		RSILibrary:     snap.RSILibrary,
	})
}
