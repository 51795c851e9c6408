package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-workforce/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoObservations = errors.New("no observations to score")
)

// rmseTieTolerance treats two held out errors closer than this as equal for selection
const rmseTieTolerance = 1e-9

// Evaluation tracks the held out scores of a single candidate model
type Evaluation struct {
	Kind models.Kind `json:"kind"`
	RMSE float64     `json:"root_mean_squared_error"`
	MAE  float64     `json:"mean_absolute_error"`
	R2   float64     `json:"r_squared"`

	// MAPE is in percent and left at 0 when undefined
	MAPE        float64 `json:"mean_absolute_percent_error"`
	MAPEDefined bool    `json:"mean_absolute_percent_error_defined"`
}

// NewEvaluation calculates the scores given the predicted and actual input slice values
func NewEvaluation(kind models.Kind, predicted, actual []float64) (*Evaluation, error) {
	rmse, err := RMSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute root mean squared error, %w", err)
	}
	mae, err := MAE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	r2, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	mape, defined, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute percent error, %w", err)
	}
	if !defined {
		mape = 0
	}

	return &Evaluation{
		Kind:        kind,
		RMSE:        rmse,
		MAE:         mae,
		R2:          r2,
		MAPE:        mape,
		MAPEDefined: defined,
	}, nil
}

// Less ranks evaluations by lowest RMSE, then lowest MAPE with undefined MAPE ranked last,
// then by model kind order.
func (e Evaluation) Less(o Evaluation) bool {
	if math.Abs(e.RMSE-o.RMSE) > rmseTieTolerance {
		return e.RMSE < o.RMSE
	}
	if e.MAPEDefined != o.MAPEDefined {
		return e.MAPEDefined
	}
	if e.MAPEDefined && e.MAPE != o.MAPE {
		return e.MAPE < o.MAPE
	}
	return e.Kind < o.Kind
}

func validateLen(predicted, actual []float64) error {
	if len(predicted) != len(actual) {
		return fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	if len(actual) == 0 {
		return ErrNoObservations
	}
	return nil
}

// RMSE computes the root mean squared error. A score of 0 means a perfect match.
func RMSE(predicted, actual []float64) (float64, error) {
	if err := validateLen(predicted, actual); err != nil {
		return 0, err
	}
	return floats.Distance(predicted, actual, 2) / math.Sqrt(float64(len(actual))), nil
}

// MAE computes the mean absolute error
func MAE(predicted, actual []float64) (float64, error) {
	if err := validateLen(predicted, actual); err != nil {
		return 0, err
	}
	return floats.Distance(predicted, actual, 1) / float64(len(actual)), nil
}

// MAPE calculates the mean absolute percent error in percent. It is undefined, and reported
// as NaN with false, when any actual value is zero.
func MAPE(predicted, actual []float64) (float64, bool, error) {
	if err := validateLen(predicted, actual); err != nil {
		return 0, false, err
	}
	var mape float64
	for i := range actual {
		if actual[i] == 0 {
			return math.NaN(), false, nil
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	return mape / float64(len(actual)) * 100, true, nil
}

// RSquared computes the coefficient of determination. A constant actual series scores 1.0
// when matched exactly and 0.0 otherwise.
func RSquared(predicted, actual []float64) (float64, error) {
	if err := validateLen(predicted, actual); err != nil {
		return 0, err
	}
	mean := stat.Mean(actual, nil)
	var ssTot, ssRes float64
	for i := range actual {
		ssTot += (actual[i] - mean) * (actual[i] - mean)
		ssRes += (actual[i] - predicted[i]) * (actual[i] - predicted[i])
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1.0, nil
		}
		return 0.0, nil
	}
	return 1 - ssRes/ssTot, nil
}
