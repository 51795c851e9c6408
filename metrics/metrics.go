// Package metrics exposes prometheus collectors for the training and prediction pipeline
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "workforce"

// Prediction outcomes
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeClamped  = "clamped"
	OutcomeError    = "error"
)

// Pipeline holds the collectors of a single pipeline
type Pipeline struct {
	DroppedRows    *prometheus.CounterVec
	TrainDuration  *prometheus.HistogramVec
	ModelRMSE      *prometheus.GaugeVec
	SelectedModel  *prometheus.GaugeVec
	Predictions    *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
}

// NewPipeline creates the collectors and registers them with reg. A nil registerer leaves
// the collectors unregistered.
func NewPipeline(reg prometheus.Registerer) *Pipeline {
	f := promauto.With(reg)
	return &Pipeline{
		DroppedRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_rows_total",
				Help:      "Number of rows with a missing derived feature removed before fitting",
			},
			[]string{"partition"},
		),
		TrainDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "train_duration_seconds",
				Help:      "Time to fit a candidate model",
				Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"model"},
		),
		ModelRMSE: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_rmse",
				Help:      "Held out root mean squared error of the last fit of each candidate",
			},
			[]string{"model"},
		),
		SelectedModel: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "selected_model",
				Help:      "Set to 1 for the candidate selected by the last fit",
			},
			[]string{"model"},
		),
		Predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Number of point forecasts by outcome",
			},
			[]string{"outcome"},
		),
		ProviderErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_errors_total",
				Help:      "Number of failed location intelligence lookups by operation",
			},
			[]string{"op"},
		),
	}
}
