package main

import (
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-workforce/internal/config"
	"github.com/aouyang1/go-workforce/timedataset"

	"github.com/spf13/cobra"
)

var (
	simStart string
	simEnd   string
	simOut   string
)

func simulateOptions(startDate, endDate string) (*timedataset.SimulateOptions, error) {
	start, err := config.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date, %w", err)
	}
	end, err := config.ParseDate(endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date, %w", err)
	}
	opt := timedataset.NewDefaultSimulateOptions(seed)
	opt.Start = start
	opt.End = end
	return opt, nil
}

// simulateCmd writes a synthetic demand history
func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic daily demand history",
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := simulateOptions(simStart, simEnd)
			if err != nil {
				return err
			}
			records, err := timedataset.Simulate(cmd.Context(), opt)
			if err != nil {
				return fmt.Errorf("unable to simulate history, %w", err)
			}
			slog.Info("simulated history", "records", len(records), "locations", len(opt.Locations))
			return writeJSON(simOut, records)
		},
	}

	cmd.Flags().StringVar(&simStart, "start", cfg.Simulation.Start, "First simulated date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&simEnd, "end", cfg.Simulation.End, "Last simulated date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&simOut, "out", "o", "-", "Output file, stdout when -")
	return cmd
}
