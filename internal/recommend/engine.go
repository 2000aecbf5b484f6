package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/riftlabs/decisioncore/internal/condenser"
	"github.com/riftlabs/decisioncore/internal/config"
	"github.com/riftlabs/decisioncore/internal/decision"
	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/regime"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

const atrPeriod = 14

// minHistoryFloor is the smallest candle window the engine ever requests,
// regardless of what the registered strategies declare. It is above the
// 2*14 = 28 candles the regime classifier needs before it stops returning
// UNKNOWN.
const minHistoryFloor = 60

// Engine orchestrates one (instrument, asOf) run across the provider,
// the strategy registry, the condenser, and the decision generator/explainer.
type Engine struct {
	provider    market.CandleProvider
	registry    *strategy.Registry
	generator   *decision.Generator
	explainer   *decision.Explainer
	timeframe   string
	barDuration time.Duration
	parallelism int
	observer    Observer
	log         zerolog.Logger
}

// NewEngine builds an Engine. timeframe is the provider-facing timeframe
// string (e.g. "1h"); barDuration is its equivalent time.Duration, used to
// compute a Decision's valid_until. parallelism bounds concurrent strategy
// evaluation within one run; values <= 0 are treated as 1.
func NewEngine(provider market.CandleProvider, registry *strategy.Registry, timeframe string, barDuration time.Duration, parallelism int, observer Observer) *Engine {
	if parallelism <= 0 {
		parallelism = 1
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Engine{
		provider:    provider,
		registry:    registry,
		generator:   decision.NewGenerator(),
		explainer:   decision.NewExplainer(),
		timeframe:   timeframe,
		barDuration: barDuration,
		parallelism: parallelism,
		observer:    observer,
		log:         config.NewLogger("recommend.engine"),
	}
}

// Recommend runs the full pipeline for instrument as of asOf: fetch ->
// evaluate strategies -> condense -> generate -> explain. The snapshot is
// taken once at the start of the run, so concurrent registry mutations never
// affect an in-flight run's contributing list or weights.
func (e *Engine) Recommend(ctx context.Context, instrument market.Instrument, asOf time.Time) (Recommendation, error) {
	start := time.Now()
	e.observer.OnEvent(Event{Kind: EventEngineRunStarted, Instrument: instrument, AsOf: asOf})

	rec, err := e.run(ctx, instrument, asOf)

	e.observer.OnEvent(Event{
		Kind:       EventEngineRunFinished,
		Instrument: instrument,
		AsOf:       asOf,
		Err:        err,
		Duration:   time.Since(start),
	})
	return rec, err
}

func (e *Engine) run(ctx context.Context, instrument market.Instrument, asOf time.Time) (Recommendation, error) {
	snapshot := e.registry.Snapshot()
	enabled := snapshot.Enabled()

	required := snapshot.RequiredHistory()
	if required < minHistoryFloor {
		required = minHistoryFloor
	}

	series, err := e.provider.Candles(ctx, instrument, e.timeframe, asOf, required)
	if err != nil {
		if ctx.Err() != nil {
			return Recommendation{}, ErrCancelled
		}
		if errors.Is(err, market.ErrDataUnavailable) {
			return Recommendation{}, fmt.Errorf("%w: fetching %s candles: %w", ErrNoData, instrument, err)
		}
		return Recommendation{}, fmt.Errorf("recommend: fetching %s candles: %w", instrument, err)
	}
	if series.Len() == 0 {
		return Recommendation{}, ErrNoData
	}

	if ctx.Err() != nil {
		return Recommendation{}, ErrCancelled
	}

	lastCandle, err := series.Latest()
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}

	r := regime.Detect(series)
	atr := lastATR(series)

	signals := e.evaluateStrategies(ctx, enabled, series, asOf)

	if ctx.Err() != nil {
		return Recommendation{}, ErrCancelled
	}

	weighted := make([]condenser.Weighted, len(enabled))
	for i, reg := range enabled {
		weighted[i] = condenser.Weighted{Signal: signals[i], Weight: reg.Weight}
	}

	agg := condenser.Condense(weighted, r)
	d := e.generator.Generate(agg, lastCandle, atr, asOf, e.barDuration)
	exp := e.explainer.Explain(string(instrument), d, agg)

	return Recommendation{
		Instrument:    instrument,
		AsOf:          asOf,
		Decision:      d,
		Aggregated:    agg,
		Explanation:   exp,
		EngineVersion: EngineVersion,
	}, nil
}

// evaluateStrategies runs each enabled strategy's Evaluate bounded by
// e.parallelism, writing results back at their registry index so the
// returned slice preserves registry order regardless of completion order.
func (e *Engine) evaluateStrategies(ctx context.Context, enabled []strategy.Registered, series market.CandleSeries, asOf time.Time) []strategy.Signal {
	signals := make([]strategy.Signal, len(enabled))
	sem := make(chan struct{}, e.parallelism)
	var wg sync.WaitGroup

	for i, reg := range enabled {
		wg.Add(1)
		go func(i int, reg strategy.Registered) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				signals[i] = strategy.NeutralSignal(reg.Strategy.Metadata().Name, asOf, "cancelled")
				return
			}
			defer func() { <-sem }()

			signals[i] = e.evaluateOne(ctx, reg, series, asOf)
		}(i, reg)
	}

	wg.Wait()
	return signals
}

// evaluateOne runs a single strategy, recovering from a panic as a
// StrategyFailed event plus a NEUTRAL placeholder rather than letting one
// misbehaving strategy take down the whole run.
func (e *Engine) evaluateOne(ctx context.Context, reg strategy.Registered, series market.CandleSeries, asOf time.Time) (sig strategy.Signal) {
	name := reg.Strategy.Metadata().Name
	defer func() {
		if r := recover(); r != nil {
			e.observer.OnEvent(Event{Kind: EventStrategyFailed, Strategy: name, Err: fmt.Errorf("panic: %v", r)})
			e.log.Error().Str("strategy", name).Interface("panic", r).Msg("strategy evaluation panicked")
			sig = strategy.NeutralSignal(name, asOf, "strategy_evaluation_error")
		}
	}()
	return reg.Strategy.Evaluate(ctx, series)
}

func lastATR(series market.CandleSeries) float64 {
	atr := indicators.ATR(series.Highs(), series.Lows(), series.Closes(), atrPeriod)
	last := atr[len(atr)-1]
	if math.IsNaN(last) {
		return 0
	}
	return last
}
