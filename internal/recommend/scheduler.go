package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/riftlabs/decisioncore/internal/config"
	"github.com/riftlabs/decisioncore/internal/market"
)

// SchedulerState is the DailyScheduler's lifecycle.
type SchedulerState int

const (
	Idle SchedulerState = iota
	Running
	Stopping
	Stopped
)

func (s SchedulerState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// TickSummary reports the outcome of one scheduled (or manually triggered)
// refresh pass over every tracked instrument.
type TickSummary struct {
	StartedAt time.Time
	Duration  time.Duration
	Succeeded int
	Failed    int
	TimedOut  int
}

type schedulerMetrics struct {
	tickSucceeded prometheus.Counter
	tickFailed    prometheus.Counter
	tickTimedOut  prometheus.Counter
	tickDuration  prometheus.Histogram
}

var (
	globalSchedulerMetrics *schedulerMetrics
	schedulerMetricsOnce   sync.Once
)

func getOrCreateSchedulerMetrics() *schedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		globalSchedulerMetrics = &schedulerMetrics{
			tickSucceeded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "scheduler_tick_succeeded_total",
				Help: "Instruments successfully refreshed per scheduler tick, summed across ticks.",
			}),
			tickFailed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "scheduler_tick_failed_total",
				Help: "Instruments that failed to refresh per scheduler tick, summed across ticks.",
			}),
			tickTimedOut: promauto.NewCounter(prometheus.CounterOpts{
				Name: "scheduler_tick_timed_out_total",
				Help: "Instruments that timed out during refresh per scheduler tick, summed across ticks.",
			}),
			tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "scheduler_tick_duration_seconds",
				Help:    "Wall-clock duration of one scheduler tick.",
				Buckets: prometheus.DefBuckets,
			}),
		}
	})
	return globalSchedulerMetrics
}

// Refresher is whatever the scheduler calls per instrument per tick. The
// recommend.RecommendationCache's GetOrBuild (wrapping an Engine) satisfies
// this once instrument and asOf are bound via a closure at wiring time.
type Refresher func(ctx context.Context, instrument market.Instrument, asOf time.Time) error

// DailyScheduler refreshes recommendations for every tracked instrument on a
// fixed daily cadence (or on demand via TriggerNow), bounding concurrent
// refreshes and isolating one instrument's failure or timeout from the rest.
type DailyScheduler struct {
	instruments []market.Instrument
	refresh     Refresher
	times       []time.Duration // time-of-day offsets from UTC midnight
	runTimeout  time.Duration
	parallelism int
	gracePeriod time.Duration
	observer    Observer
	log         zerolog.Logger
	metrics     *schedulerMetrics

	mu    sync.Mutex
	state SchedulerState
	stopCh chan struct{}
	doneCh chan struct{}
	wg     sync.WaitGroup
}

// NewDailyScheduler builds a DailyScheduler. times are UTC time-of-day
// offsets (e.g. 5*time.Minute for 00:05 UTC) at which a tick fires.
func NewDailyScheduler(instruments []market.Instrument, refresh Refresher, times []time.Duration, runTimeout time.Duration, parallelism int, gracePeriod time.Duration, observer Observer) *DailyScheduler {
	if parallelism <= 0 {
		parallelism = 1
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &DailyScheduler{
		instruments: instruments,
		refresh:     refresh,
		times:       times,
		runTimeout:  runTimeout,
		parallelism: parallelism,
		gracePeriod: gracePeriod,
		observer:    observer,
		log:         config.NewLogger("recommend.scheduler"),
		metrics:     getOrCreateSchedulerMetrics(),
		state:       Idle,
	}
}

// State returns the scheduler's current lifecycle state.
func (d *DailyScheduler) State() SchedulerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start begins watching the clock for configured times-of-day, firing a
// tick each time one is crossed. Start is a no-op if the scheduler is
// already Running.
func (d *DailyScheduler) Start(ctx context.Context) {
	d.mu.Lock()
	if d.state == Running {
		d.mu.Unlock()
		return
	}
	d.state = Running
	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.mu.Unlock()

	d.wg.Add(1)
	go d.loop(ctx)
}

// loop fires one tick per minute boundary whose time-of-day matches a
// configured offset, watching ctx.Done() and stopCh alongside the ticker --
// the same select shape the teacher's sync service uses for its periodic
// refresh.
func (d *DailyScheduler) loop(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.doneCh)

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	fired := make(map[time.Duration]time.Time)

	for {
		select {
		case <-ctx.Done():
			d.setState(Stopped)
			return
		case <-d.stopCh:
			d.setState(Stopped)
			return
		case now := <-ticker.C:
			d.maybeFire(ctx, now, fired)
		}
	}
}

func (d *DailyScheduler) maybeFire(ctx context.Context, now time.Time, fired map[time.Duration]time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := now.Sub(midnight).Truncate(time.Minute)

	for _, t := range d.times {
		if offset != t.Truncate(time.Minute) {
			continue
		}
		if last, ok := fired[t]; ok && now.Sub(last) < time.Hour {
			continue
		}
		fired[t] = now
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runTick(ctx, now)
		}()
	}
}

// TriggerNow runs one tick immediately, independent of the scheduled times.
// It blocks until that tick completes.
func (d *DailyScheduler) TriggerNow(ctx context.Context) TickSummary {
	return d.runTick(ctx, time.Now())
}

func (d *DailyScheduler) runTick(ctx context.Context, at time.Time) TickSummary {
	start := time.Now()
	summary := TickSummary{StartedAt: start}

	sem := make(chan struct{}, d.parallelism)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, inst := range d.instruments {
		wg.Add(1)
		go func(inst market.Instrument) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			runCtx, cancel := context.WithTimeout(ctx, d.runTimeout)
			defer cancel()

			err := d.refresh(runCtx, inst, at)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				summary.Succeeded++
			case runCtx.Err() == context.DeadlineExceeded:
				summary.TimedOut++
				d.log.Warn().Str("instrument", string(inst)).Msg("scheduled refresh timed out")
			default:
				summary.Failed++
				d.log.Error().Err(err).Str("instrument", string(inst)).Msg("scheduled refresh failed")
			}
		}(inst)
	}

	wg.Wait()
	summary.Duration = time.Since(start)

	d.metrics.tickSucceeded.Add(float64(summary.Succeeded))
	d.metrics.tickFailed.Add(float64(summary.Failed))
	d.metrics.tickTimedOut.Add(float64(summary.TimedOut))
	d.metrics.tickDuration.Observe(summary.Duration.Seconds())

	d.observer.OnEvent(Event{Kind: EventSchedulerTickSummary, AsOf: at, Summary: &summary})

	return summary
}

func (d *DailyScheduler) setState(s SchedulerState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != Stopped {
		d.state = s
	}
}

// Stop requests the scheduler stop, waiting up to gracePeriod for any
// in-flight tick to finish before returning. Stop is idempotent.
func (d *DailyScheduler) Stop() {
	d.mu.Lock()
	if d.state != Running {
		d.mu.Unlock()
		return
	}
	d.state = Stopping
	stopCh := d.stopCh
	d.mu.Unlock()

	close(stopCh)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(d.gracePeriod):
		d.log.Warn().Msg("scheduler stop grace period elapsed with a tick still in flight")
	}

	d.mu.Lock()
	d.state = Stopped
	d.mu.Unlock()
}

// ParseTimesOfDay converts "HH:MM" UTC strings (as carried by
// config.SchedulerConfig.Times) into offsets from midnight, sorted
// ascending. Malformed entries are skipped.
func ParseTimesOfDay(times []string) []time.Duration {
	out := make([]time.Duration, 0, len(times))
	for _, s := range times {
		var h, m int
		if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
			continue
		}
		out = append(out, time.Duration(h)*time.Hour+time.Duration(m)*time.Minute)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
