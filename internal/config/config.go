package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration for the decision pipeline and
// its HTTP surface. It is loaded once at startup by the outside loader
// (cmd/api) and handed to the core as a plain struct — the core never reads
// viper, environment variables, or files directly.
type Config struct {
	App        AppConfig                 `mapstructure:"app"`
	Database   DatabaseConfig            `mapstructure:"database"`
	Redis      RedisConfig               `mapstructure:"redis"`
	API        APIConfig                 `mapstructure:"api"`
	Trading    TradingConfig             `mapstructure:"trading"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Scheduler  SchedulerConfig           `mapstructure:"scheduler"`
	Monitoring MonitoringConfig          `mapstructure:"monitoring"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // "json" or "console"
}

// DatabaseConfig contains PostgreSQL candle-store settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	PoolSize int    `mapstructure:"pool_size"`
}

// DSN renders a libpq-style connection string for pgxpool.ParseConfig.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode, d.PoolSize)
}

// RedisConfig contains Redis settings for the market-data and recommendation
// caches.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr renders the host:port address go-redis expects.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// APIConfig contains REST API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// TradingConfig carries the tracked instrument set and decision timeframe.
type TradingConfig struct {
	Instruments       []string      `mapstructure:"instruments"`        // e.g. ["BTCUSDT", "ETHUSDT"]
	DecisionTimeframe string        `mapstructure:"decision_timeframe"` // e.g. "1h"
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
}

// StrategyConfig describes one strategy's initial registration state, the
// strategy_set the spec's config inputs call for. It is keyed in Config by
// a snake_case strategy key (e.g. "macd_histogram"); see
// cmd/api's strategyConfigName for the mapping onto registry display names.
type StrategyConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Weight  float64 `mapstructure:"weight"`
}

// SchedulerConfig controls the daily scheduler's cadence and resource
// bounds.
type SchedulerConfig struct {
	Times               []string      `mapstructure:"times"` // UTC "HH:MM" times of day
	RunTimeout          time.Duration `mapstructure:"run_timeout"`
	BoundedParallelism  int           `mapstructure:"bounded_parallelism"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// MonitoringConfig contains monitoring settings.
type MonitoringConfig struct {
	PrometheusPort int  `mapstructure:"prometheus_port"`
	EnableMetrics  bool `mapstructure:"enable_metrics"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("DECISIONCORE")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults and environment variables.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "decision-core")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "decision_core")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.pool_size", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", APIServerPort)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("trading.instruments", []string{"BTCUSDT"})
	v.SetDefault("trading.decision_timeframe", "1h")
	v.SetDefault("trading.cache_ttl", time.Hour)

	v.SetDefault("scheduler.times", []string{"00:05"})
	v.SetDefault("scheduler.run_timeout", 60*time.Second)
	v.SetDefault("scheduler.bounded_parallelism", 4)
	v.SetDefault("scheduler.shutdown_grace_period", 30*time.Second)

	v.SetDefault("monitoring.prometheus_port", PrometheusPort)
	v.SetDefault("monitoring.enable_metrics", true)

	for _, s := range []struct {
		name   string
		weight float64
	}{
		{"rsi", 1.0},
		{"macd_histogram", 1.0},
		{"bollinger_bands", 1.0},
	} {
		v.SetDefault(fmt.Sprintf("strategies.%s.enabled", s.name), true)
		v.SetDefault(fmt.Sprintf("strategies.%s.weight", s.name), s.weight)
	}
}
