package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-workforce/internal/config"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/timedataset"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	seed     uint64
	logLevel string
	dataFile string

	cfg *config.Config
)

func main() {
	var err error
	cfg, err = config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unable to load config, %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "workforce",
		Short: "Forecast daily workforce demand per location",
		Long: `Trains demand forecasting models on a daily per-location history enriched with
location intelligence signals and predicts the demand of future dates.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.LogLevel = logLevel
			lvl, err := cfg.Level()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
			return nil
		},
	}

	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", cfg.Seed, "Seed of every stochastic component")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "History records (JSON), simulated when empty")

	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(trainCmd())
	rootCmd.AddCommand(predictCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newProvider builds the rate limited and cached location intelligence provider
func newProvider() (location.Provider, error) {
	limited := location.NewLimited(location.NewSimulated(seed), cfg.Provider.RateLimit, cfg.Provider.Burst)
	return location.NewCached(limited, cfg.Provider.CacheSize, cfg.Provider.CacheTTL)
}

// loadRecords reads the history from the data file or simulates it
func loadRecords(cmd *cobra.Command) ([]timedataset.Record, error) {
	if dataFile == "" {
		opt, err := simulateOptions(cfg.Simulation.Start, cfg.Simulation.End)
		if err != nil {
			return nil, err
		}
		return timedataset.Simulate(cmd.Context(), opt)
	}

	data, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read history, %w", err)
	}
	var records []timedataset.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unable to parse history, %w", err)
	}
	return records, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
