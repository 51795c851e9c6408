package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aouyang1/go-workforce"
	"github.com/aouyang1/go-workforce/internal/config"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	modelIn   string
	locations []string
	startDate string
	daysAhead []int
	asJSON    bool
)

// predictCmd forecasts future dates from a trained model
func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the demand of locations at future dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := config.ParseDate(startDate)
			if err != nil {
				return fmt.Errorf("invalid start date, %w", err)
			}

			data, err := os.ReadFile(modelIn)
			if err != nil {
				return fmt.Errorf("unable to read model, %w", err)
			}
			var m workforce.Model
			if err := json.Unmarshal(data, &m); err != nil {
				return fmt.Errorf("unable to parse model, %w", err)
			}

			records, err := loadRecords(cmd)
			if err != nil {
				return err
			}
			opt, err := forecasterOptions(prometheus.NewRegistry())
			if err != nil {
				return err
			}
			provider, err := newProvider()
			if err != nil {
				return fmt.Errorf("unable to initialize location provider, %w", err)
			}
			f, err := workforce.NewFromModel(provider, m, opt)
			if err != nil {
				return err
			}
			if err := f.SetHistory(records); err != nil {
				return err
			}

			preds, err := f.Horizon(cmd.Context(), locations, start, daysAhead)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON("-", preds)
			}

			tbl := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.AlignRight)
			fmt.Fprintf(tbl, "Location\tDate\tDays Ahead\tDemand\tFallback\t\n")
			for i, p := range preds {
				fmt.Fprintf(tbl, "%s\t%s\t%d\t%d\t%t\t\n",
					p.EntityID, p.Date.Format(time.DateOnly), daysAhead[i%len(daysAhead)], p.Demand, p.Fallback)
			}
			return tbl.Flush()
		},
	}

	cmd.Flags().StringVarP(&modelIn, "model", "m", "model.json", "Trained model (JSON)")
	cmd.Flags().StringSliceVarP(&locations, "location", "l", []string{"LOC_001", "LOC_002", "LOC_005"}, "Locations to predict")
	cmd.Flags().StringVar(&startDate, "start", "2025-01-01", "Date the horizon counts from (YYYY-MM-DD)")
	cmd.Flags().IntSliceVar(&daysAhead, "days-ahead", []int{30, 90, 180}, "Offsets in days from the start date")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print predictions as JSON")
	return cmd
}
