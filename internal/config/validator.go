package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ValidatorOptions controls how deep Validator's checks go.
type ValidatorOptions struct {
	// VerifyConnectivity dials Postgres and Redis to confirm the
	// configuration actually points at something live, instead of only
	// checking structural validity.
	VerifyConnectivity bool
	Timeout            time.Duration
}

// Validator runs structural and, optionally, connectivity validation against
// a loaded Config. Structural validation is cheap and always run by Load;
// Validator is for startup-time and operator-triggered deeper checks.
type Validator struct {
	config  *Config
	options ValidatorOptions
}

// NewValidator builds a Validator for cfg with the given options, defaulting
// Timeout to 5 seconds if unset.
func NewValidator(cfg *Config, options ValidatorOptions) *Validator {
	if options.Timeout <= 0 {
		options.Timeout = 5 * time.Second
	}
	return &Validator{config: cfg, options: options}
}

// Run performs structural validation and, if VerifyConnectivity is set,
// dials Postgres and Redis to confirm they are reachable.
func (v *Validator) Run(ctx context.Context) error {
	if err := v.config.Validate(); err != nil {
		return err
	}
	if !v.options.VerifyConnectivity {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.options.Timeout)
	defer cancel()

	if err := v.verifyDatabase(ctx); err != nil {
		return fmt.Errorf("database connectivity check failed: %w", err)
	}
	if err := v.verifyRedis(ctx); err != nil {
		return fmt.Errorf("redis connectivity check failed: %w", err)
	}
	return nil
}

func (v *Validator) verifyDatabase(ctx context.Context) error {
	poolCfg, err := pgxpool.ParseConfig(v.config.Database.DSN())
	if err != nil {
		return err
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}
	log.Debug().Msg("database connectivity check passed")
	return nil
}

func (v *Validator) verifyRedis(ctx context.Context) error {
	client := redis.NewClient(&redis.Options{
		Addr:     v.config.Redis.Addr(),
		Password: v.config.Redis.Password,
		DB:       v.config.Redis.DB,
	})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		return err
	}
	log.Debug().Msg("redis connectivity check passed")
	return nil
}
