package market

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"

	"github.com/riftlabs/decisioncore/internal/metrics"
	"github.com/riftlabs/decisioncore/internal/risk"
)

// PostgresProvider serves candles from a Postgres table, guarding every
// query with a circuit breaker so a struggling database fails fast instead
// of stacking up blocked requests.
type PostgresProvider struct {
	pool           *pgxpool.Pool
	circuitBreaker *risk.CircuitBreakerManager
}

// NewPostgresProvider opens a pooled connection to dsn and verifies it is
// reachable before returning.
func NewPostgresProvider(ctx context.Context, dsn string, cb *risk.CircuitBreakerManager) (*PostgresProvider, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("market: parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("market: connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("market: ping postgres: %w", err)
	}

	if cb == nil {
		cb = risk.NewCircuitBreakerManager()
	}
	return &PostgresProvider{pool: pool, circuitBreaker: cb}, nil
}

// Close releases the underlying connection pool.
func (p *PostgresProvider) Close() {
	p.pool.Close()
}

// Ping checks the pool is still reachable.
func (p *PostgresProvider) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Candles implements CandleProvider, querying up to `lookbackBars` candles
// for instrument/timeframe ending at or before endTS, in ascending OpenTime
// order.
func (p *PostgresProvider) Candles(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) (CandleSeries, error) {
	result, err := p.executeWithCircuitBreaker(func() (interface{}, error) {
		return p.queryCandles(ctx, instrument, timeframe, endTS, lookbackBars)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return CandleSeries{}, fmt.Errorf("%w: market data circuit open", ErrDataUnavailable)
		}
		return CandleSeries{}, err
	}

	series := result.(CandleSeries)
	if len(series.Candles) == 0 {
		return CandleSeries{}, fmt.Errorf("%w: no candles for %s %s ending at %s", ErrDataUnavailable, instrument, timeframe, endTS)
	}
	return series, nil
}

func (p *PostgresProvider) queryCandles(ctx context.Context, instrument Instrument, timeframe string, endTS time.Time, lookbackBars int) (CandleSeries, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDatabaseQuery("select_candles", float64(time.Since(start).Milliseconds()))
	}()

	const query = `
		SELECT open_time, open, high, low, close, volume
		FROM candles
		WHERE instrument = $1 AND timeframe = $2 AND open_time <= $3
		ORDER BY open_time DESC
		LIMIT $4
	`

	rows, err := p.pool.Query(ctx, query, string(instrument), timeframe, endTS, lookbackBars)
	if err != nil {
		return CandleSeries{}, fmt.Errorf("market: query candles: %w", err)
	}
	defer rows.Close()

	var candles []Candle
	for rows.Next() {
		var c Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return CandleSeries{}, fmt.Errorf("market: scan candle row: %w", err)
		}
		c.Instrument = instrument
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return CandleSeries{}, fmt.Errorf("market: iterate candle rows: %w", err)
	}

	// Query returns newest-first; the provider contract is ascending order.
	for i, j := 0, len(candles)-1; i < j; i, j = i+1, j-1 {
		candles[i], candles[j] = candles[j], candles[i]
	}

	return CandleSeries{Instrument: instrument, Timeframe: timeframe, Candles: candles}, nil
}

func (p *PostgresProvider) executeWithCircuitBreaker(operation func() (interface{}, error)) (interface{}, error) {
	result, err := p.circuitBreaker.Database().Execute(operation)
	p.circuitBreaker.Metrics().RecordRequest("database", err == nil)
	return result, err
}
