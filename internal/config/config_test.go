package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	testData := map[string]struct {
		env      map[string]string
		expected func(c *Config)
		err      bool
	}{
		"defaults": {
			expected: func(c *Config) {
				c.Seed = 42
				c.LogLevel = "info"
				c.Simulation.Start = "2022-01-01"
				c.Simulation.End = "2024-12-31"
				c.Training.Cutoff = "2024-07-01"
				c.Training.Trees = 100
				c.Training.Estimators = 100
				c.Prediction.HistoryDays = 90
				c.Prediction.MinHistory = 7
				c.Provider.RateLimit = 50
				c.Provider.Burst = 10
				c.Provider.CacheSize = 1024
				c.Provider.CacheTTL = 10 * time.Minute
			},
		},
		"overrides": {
			env: map[string]string{
				"WORKFORCE_SEED":                   "7",
				"WORKFORCE_TRAINING_CUTOFF":        "2024-01-01",
				"WORKFORCE_PROVIDER_CACHE_TTL":     "1h",
				"WORKFORCE_PREDICTION_MIN_HISTORY": "14",
			},
			expected: func(c *Config) {
				c.Seed = 7
				c.LogLevel = "info"
				c.Simulation.Start = "2022-01-01"
				c.Simulation.End = "2024-12-31"
				c.Training.Cutoff = "2024-01-01"
				c.Training.Trees = 100
				c.Training.Estimators = 100
				c.Prediction.HistoryDays = 90
				c.Prediction.MinHistory = 14
				c.Provider.RateLimit = 50
				c.Provider.Burst = 10
				c.Provider.CacheSize = 1024
				c.Provider.CacheTTL = time.Hour
			},
		},
		"invalid seed": {
			env: map[string]string{"WORKFORCE_SEED": "-1"},
			err: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			cfg, err := load(env.Options{Prefix: "WORKFORCE_", Environment: td.env})
			if td.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			expected := &Config{}
			td.expected(expected)
			assert.Equal(t, expected, cfg)
		})
	}
}

func TestLevel(t *testing.T) {
	testData := map[string]struct {
		level    string
		expected slog.Level
		err      error
	}{
		"info":  {level: "info", expected: slog.LevelInfo},
		"debug": {level: "DEBUG", expected: slog.LevelDebug},
		"warn":  {level: "warn", expected: slog.LevelWarn},
		"bad":   {level: "loud", err: ErrInvalidLogLevel},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			lvl, err := (&Config{LogLevel: td.level}).Level()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, lvl)
		})
	}
}
