package config

import (
	"fmt"
	"strings"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every ValidationError found by Validate so a
// caller sees all problems at once instead of fixing them one at a time.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid configuration (%d error(s)): %s", len(e), strings.Join(msgs, "; "))
}

// Validate checks structural validity of the config. It does not verify
// connectivity to Postgres/Redis; that is Validator's job.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if len(c.Trading.Instruments) == 0 {
		errs = append(errs, ValidationError{"trading.instruments", "must track at least one instrument"})
	}
	if c.Trading.DecisionTimeframe == "" {
		errs = append(errs, ValidationError{"trading.decision_timeframe", "must not be empty"})
	}
	if c.Trading.CacheTTL <= 0 {
		errs = append(errs, ValidationError{"trading.cache_ttl", "must be positive"})
	}

	for name, s := range c.Strategies {
		if s.Weight < 0 {
			errs = append(errs, ValidationError{fmt.Sprintf("strategies.%s.weight", name), "must not be negative"})
		}
	}

	if len(c.Scheduler.Times) == 0 {
		errs = append(errs, ValidationError{"scheduler.times", "must schedule at least one run time"})
	}
	if c.Scheduler.RunTimeout <= 0 {
		errs = append(errs, ValidationError{"scheduler.run_timeout", "must be positive"})
	}
	if c.Scheduler.BoundedParallelism < 1 {
		errs = append(errs, ValidationError{"scheduler.bounded_parallelism", "must be at least 1"})
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, ValidationError{"api.port", "must be a valid TCP port"})
	}

	if c.Database.Host == "" {
		errs = append(errs, ValidationError{"database.host", "must not be empty"})
	}
	if c.Redis.Host == "" {
		errs = append(errs, ValidationError{"redis.host", "must not be empty"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
