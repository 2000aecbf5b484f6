package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/riftlabs/decisioncore/internal/api"
	"github.com/riftlabs/decisioncore/internal/config"
	"github.com/riftlabs/decisioncore/internal/indicators"
	"github.com/riftlabs/decisioncore/internal/market"
	"github.com/riftlabs/decisioncore/internal/metrics"
	"github.com/riftlabs/decisioncore/internal/recommend"
	"github.com/riftlabs/decisioncore/internal/risk"
	"github.com/riftlabs/decisioncore/internal/strategy"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load or validate configuration")
	}

	config.InitLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	log.Info().Str("version", config.GetVersion()).Msg("starting decision-core")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	breakers := risk.NewCircuitBreakerManager()

	pgProvider, err := market.NewPostgresProvider(ctx, cfg.Database.DSN(), breakers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to candle store")
	}
	defer pgProvider.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var provider market.CandleProvider = market.NewRedisSeriesCache(pgProvider, redisClient, cfg.Trading.CacheTTL)

	registry := buildRegistry(cfg.Strategies)

	instruments := make([]market.Instrument, len(cfg.Trading.Instruments))
	for i, s := range cfg.Trading.Instruments {
		instruments[i] = market.Instrument(s)
	}

	barDuration, err := time.ParseDuration(normalizeTimeframe(cfg.Trading.DecisionTimeframe))
	if err != nil {
		log.Fatal().Err(err).Str("decision_timeframe", cfg.Trading.DecisionTimeframe).Msg("invalid decision timeframe")
	}

	observer := recommend.MultiObserver{loggingObserver{}, metricsObserver{}}

	engine := recommend.NewEngine(provider, registry, cfg.Trading.DecisionTimeframe, barDuration, cfg.Scheduler.BoundedParallelism, observer)
	cache := recommend.NewRecommendationCache(cfg.Trading.CacheTTL, barDuration, redisClient, observer)

	refresh := func(ctx context.Context, instrument market.Instrument, asOf time.Time) error {
		cache.Invalidate(instrument)
		_, err := cache.GetOrBuild(ctx, instrument, asOf, engine.Recommend)
		return err
	}

	scheduler := recommend.NewDailyScheduler(
		instruments,
		refresh,
		recommend.ParseTimesOfDay(cfg.Scheduler.Times),
		cfg.Scheduler.RunTimeout,
		cfg.Scheduler.BoundedParallelism,
		cfg.Scheduler.ShutdownGracePeriod,
		observer,
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := api.NewServer(api.Config{
		Host:        cfg.API.Host,
		Port:        cfg.API.Port,
		CORSOrigins: cfg.API.CORSOrigins,
		Deps: api.Dependencies{
			Engine:      engine,
			Cache:       cache,
			Registry:    registry,
			Scheduler:   scheduler,
			Provider:    provider,
			Indicators:  indicators.NewService(),
			Instruments: instruments,
			Timeframe:   cfg.Trading.DecisionTimeframe,
		},
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	var metricsServer *metrics.Server
	if cfg.Monitoring.EnableMetrics {
		metricsServer = metrics.NewServer(cfg.Monitoring.PrometheusPort, log.Logger)
		if err := metricsServer.Start(); err != nil {
			log.Error().Err(err).Msg("metrics server failed to start")
			metricsServer = nil
		}
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("metrics server forced to shutdown")
		}
	}
}

// buildRegistry registers the built-in strategy set, applying the
// configured enabled/weight overrides for each by name.
func buildRegistry(strategyCfg map[string]config.StrategyConfig) *strategy.Registry {
	registry := strategy.NewRegistry()
	registry.Register(strategy.NewRSIStrategy())
	registry.Register(strategy.NewMACDHistogramStrategy())
	registry.Register(strategy.NewBollingerBandsStrategy())

	for key, sc := range strategyCfg {
		name := strategyConfigName(key)
		registry.SetEnabled(name, sc.Enabled)
		registry.SetWeight(name, sc.Weight)
	}
	return registry
}

// strategyConfigName maps the config file's snake_case strategy keys onto
// the registry's display names.
func strategyConfigName(configName string) string {
	switch configName {
	case "rsi":
		return "RSI"
	case "macd_histogram":
		return "MACD-Histogram"
	case "bollinger_bands":
		return "Bollinger-Bands"
	default:
		return configName
	}
}

// normalizeTimeframe maps a provider-facing timeframe string (e.g. "1h",
// "1d") onto a time.ParseDuration-compatible string; "1d" is not accepted by
// time.ParseDuration so it is expanded to hours.
func normalizeTimeframe(timeframe string) string {
	if timeframe == "1d" {
		return "24h"
	}
	return timeframe
}

// loggingObserver logs pipeline events through the structured global logger.
// It is the default Observer wired in production; tests use a capturing one.
type loggingObserver struct{}

func (loggingObserver) OnEvent(e recommend.Event) {
	evt := log.Info().Str("event", string(e.Kind))
	if e.Instrument != "" {
		evt = evt.Str("instrument", string(e.Instrument))
	}
	if e.Strategy != "" {
		evt = evt.Str("strategy", e.Strategy)
	}
	if e.Err != nil {
		evt = evt.Err(e.Err)
	}
	if e.Duration > 0 {
		evt = evt.Dur("duration", e.Duration)
	}
	if e.Summary != nil {
		evt = evt.Int("succeeded", e.Summary.Succeeded).Int("failed", e.Summary.Failed).Int("timed_out", e.Summary.TimedOut)
	}
	evt.Msg("pipeline event")
}

// metricsObserver forwards pipeline events onto the Prometheus counters and
// histograms in internal/metrics, keeping instrumentation decoupled from the
// engine/cache themselves (they only know about the Observer interface).
type metricsObserver struct{}

func (metricsObserver) OnEvent(e recommend.Event) {
	switch e.Kind {
	case recommend.EventEngineRunFinished:
		metrics.RecordRecommendationBuild(float64(e.Duration.Milliseconds()), e.Err)
	case recommend.EventCacheHit:
		metrics.RecordCacheResult(string(e.Instrument), "hit")
	case recommend.EventCacheMiss:
		metrics.RecordCacheResult(string(e.Instrument), "miss")
	case recommend.EventStrategyFailed:
		metrics.RecordStrategyFailure(e.Strategy)
	}
}
