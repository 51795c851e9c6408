package forecast

import (
	"math"
	"slices"
	"testing"

	"github.com/aouyang1/go-workforce/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluation(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Evaluation
		err       error
	}{
		"perfect": {
			predicted: []float64{10, 20, 30},
			actual:    []float64{10, 20, 30},
			expected:  &Evaluation{RMSE: 0, MAE: 0, R2: 1, MAPE: 0, MAPEDefined: true},
		},
		"offset": {
			predicted: []float64{12, 18, 33},
			actual:    []float64{10, 20, 30},
			expected: &Evaluation{
				RMSE:        math.Sqrt(17.0 / 3),
				MAE:         7.0 / 3,
				R2:          1 - 17.0/200,
				MAPE:        (0.2 + 0.1 + 0.1) / 3 * 100,
				MAPEDefined: true,
			},
		},
		"constant actual matched": {
			predicted: []float64{20, 20},
			actual:    []float64{20, 20},
			expected:  &Evaluation{R2: 1, MAPEDefined: true},
		},
		"constant actual missed": {
			predicted: []float64{21, 19},
			actual:    []float64{20, 20},
			expected:  &Evaluation{RMSE: 1, MAE: 1, R2: 0, MAPE: 5, MAPEDefined: true},
		},
		"zero actual": {
			predicted: []float64{1, 10},
			actual:    []float64{0, 10},
			expected:  &Evaluation{RMSE: math.Sqrt(0.5), MAE: 0.5, R2: 1 - 1.0/50, MAPE: 0, MAPEDefined: false},
		},
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
		"empty": {
			err: ErrNoObservations,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewEvaluation(models.KindLinear, td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.KindLinear, res.Kind)
			assert.InDelta(t, td.expected.RMSE, res.RMSE, 1e-9, "rmse")
			assert.InDelta(t, td.expected.MAE, res.MAE, 1e-9, "mae")
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9, "r2")
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9, "mape")
			assert.Equal(t, td.expected.MAPEDefined, res.MAPEDefined)
		})
	}
}

func TestMAPEUndefined(t *testing.T) {
	mape, defined, err := MAPE([]float64{1, 2}, []float64{0, 2})
	require.NoError(t, err)
	assert.False(t, defined)
	assert.True(t, math.IsNaN(mape))
}

func TestEvaluationLess(t *testing.T) {
	evals := []Evaluation{
		{Kind: models.KindLinear, RMSE: 1.0, MAPE: 5, MAPEDefined: true},
		{Kind: models.KindBoosting, RMSE: 1.0, MAPEDefined: false},
		{Kind: models.KindBagging, RMSE: 2.0, MAPE: 1, MAPEDefined: true},
		{Kind: models.KindBoosting, RMSE: 1.0, MAPE: 4, MAPEDefined: true},
		{Kind: models.KindBagging, RMSE: 1.0, MAPE: 5, MAPEDefined: true},
	}

	sorted := slices.Clone(evals)
	slices.SortFunc(sorted, func(a, b Evaluation) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})

	expected := []Evaluation{evals[3], evals[4], evals[0], evals[1], evals[2]}
	assert.Equal(t, expected, sorted)
}
