package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-workforce"
	"github.com/aouyang1/go-workforce/internal/config"
	"github.com/aouyang1/go-workforce/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	cutoff      string
	modelOut    string
	plotOut     string
	metricsFile string
	trees       int
	estimators  int
)

func forecasterOptions(reg prometheus.Registerer) (*workforce.Options, error) {
	opt := workforce.NewDefaultOptions(seed)
	if cutoff != "" {
		c, err := config.ParseDate(cutoff)
		if err != nil {
			return nil, fmt.Errorf("invalid cutoff, %w", err)
		}
		opt.Cutoff = c
	}
	if trees > 0 {
		opt.Trainer.Models.Forest.Trees = trees
	}
	if estimators > 0 {
		opt.Trainer.Models.Boosting.Estimators = estimators
	}
	opt.Engine.HistoryDays = cfg.Prediction.HistoryDays
	opt.Engine.MinHistory = cfg.Prediction.MinHistory
	opt.Engine.Parallelization = cfg.Prediction.Parallelization
	opt.Metrics = metrics.NewPipeline(reg)
	return opt, nil
}

// trainCmd fits the candidate models and writes the selected one
func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train candidate models and keep the one with the lowest held out error",
		Long: `Derives lag, rolling, calendar and location intelligence features from the history,
splits it chronologically at the cutoff, trains a random forest, gradient boosting and
linear regression and writes the model with the lowest held out RMSE.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			opt, err := forecasterOptions(reg)
			if err != nil {
				return err
			}
			provider, err := newProvider()
			if err != nil {
				return fmt.Errorf("unable to initialize location provider, %w", err)
			}
			f, err := workforce.New(provider, opt)
			if err != nil {
				return err
			}
			if err := f.Fit(records); err != nil {
				return err
			}

			m, err := f.Model()
			if err != nil {
				return err
			}
			if err := m.Forecast.TablePrint(os.Stdout, "", "  "); err != nil {
				return err
			}
			if modelOut != "" {
				if err := writeJSON(modelOut, m); err != nil {
					return fmt.Errorf("unable to write model, %w", err)
				}
				slog.Info("wrote model", "path", modelOut, "model", m.Forecast.Kind.String())
			}

			if plotOut != "" {
				file, err := os.Create(plotOut)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := f.PlotFit(file); err != nil {
					return fmt.Errorf("unable to plot fit, %w", err)
				}
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					return fmt.Errorf("unable to write metrics, %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cutoff, "cutoff", cfg.Training.Cutoff, "First date of the test partition (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&modelOut, "model", "m", "", "Write the selected model (JSON)")
	cmd.Flags().StringVar(&plotOut, "plot", "", "Write an html plot of the held out fit")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", cfg.Training.MetricsFile, "Write prometheus metrics in text format")
	cmd.Flags().IntVar(&trees, "trees", cfg.Training.Trees, "Trees in the random forest")
	cmd.Flags().IntVar(&estimators, "estimators", cfg.Training.Estimators, "Boosting stages")
	return cmd
}
