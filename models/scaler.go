package models

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrScalerNotFitted = errors.New("scaler has not been fitted")

// StandardScaler centers every feature on its mean and divides by its population standard
// deviation. Features with zero variance keep a scale of 1.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Fit(x mat.Matrix) error {
	if x == nil {
		return ErrNoTrainingMatrix
	}
	m, n := x.Dims()
	if m == 0 || n == 0 {
		return ErrEmptyTraining
	}
	s.Mean = make([]float64, n)
	s.Scale = make([]float64, n)
	for j := 0; j < n; j++ {
		col := mat.Col(nil, j, x)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return nil
}

// Transform returns a standardized copy of the matrix
func (s *StandardScaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	if s == nil || len(s.Mean) == 0 {
		return nil, ErrScalerNotFitted
	}
	if err := predictValidate(x, len(s.Mean)); err != nil {
		return nil, err
	}
	var res mat.Dense
	res.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, x)
	return &res, nil
}

// TransformRow standardizes a single observation
func (s *StandardScaler) TransformRow(row []float64) ([]float64, error) {
	if s == nil || len(s.Mean) == 0 {
		return nil, ErrScalerNotFitted
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("got %d features but scaler has %d, %w", len(row), len(s.Mean), ErrFeatureLenMismatch)
	}
	res := slices.Clone(row)
	for j := range res {
		res[j] = (res[j] - s.Mean[j]) / s.Scale[j]
	}
	return res, nil
}
