package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

// Config holds the environment defaults of the command line driver. Flags override them.
type Config struct {
	Seed     uint64 `env:"SEED" envDefault:"42"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Simulation struct {
		Start string `env:"START" envDefault:"2022-01-01"`
		End   string `env:"END" envDefault:"2024-12-31"`
	} `envPrefix:"SIMULATION_"`

	Training struct {
		Cutoff      string `env:"CUTOFF" envDefault:"2024-07-01"`
		Trees       int    `env:"TREES" envDefault:"100"`
		Estimators  int    `env:"ESTIMATORS" envDefault:"100"`
		MetricsFile string `env:"METRICS_FILE"`
	} `envPrefix:"TRAINING_"`

	Prediction struct {
		HistoryDays     int `env:"HISTORY_DAYS" envDefault:"90"`
		MinHistory      int `env:"MIN_HISTORY" envDefault:"7"`
		Parallelization int `env:"PARALLELIZATION" envDefault:"0"`
	} `envPrefix:"PREDICTION_"`

	Provider struct {
		RateLimit float64       `env:"RATE_LIMIT" envDefault:"50"`
		Burst     int           `env:"BURST" envDefault:"10"`
		CacheSize int           `env:"CACHE_SIZE" envDefault:"1024"`
		CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	} `envPrefix:"PROVIDER_"`
}

// LoadConfig parses the WORKFORCE_ prefixed environment
func LoadConfig() (*Config, error) {
	return load(env.Options{Prefix: "WORKFORCE_"})
}

func load(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// first error only keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// Level resolves the configured log level
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%s, %w", c.LogLevel, ErrInvalidLogLevel)
	}
	return lvl, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
