package recommend

import "errors"

// Engine-level errors. These are distinct from the lower-level
// market.ErrDataUnavailable and strategy per-call errors, which the engine
// absorbs or translates into one of these before returning.
var (
	// ErrNoData means the engine could not produce a Recommendation at
	// all: the provider returned no candles or reported
	// market.ErrDataUnavailable (which stays in the error chain).
	ErrNoData = errors.New("recommend: no data available")

	// ErrCancelled means the caller's context was cancelled mid-run. The
	// cache must not publish a Ready entry for a cancelled build.
	ErrCancelled = errors.New("recommend: run cancelled")
)
