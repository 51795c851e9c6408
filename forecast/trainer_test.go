package forecast

import (
	"context"
	"testing"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/metrics"
	"github.com/aouyang1/go-workforce/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekly(i int) float64 {
	return 20 + float64(i%7)*3
}

func TestTrainerOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt *TrainerOptions
		err error
	}{
		"nil": {},
		"no candidates": {
			opt: &TrainerOptions{Models: models.NewDefaultOptions(0)},
			err: ErrNoCandidates,
		},
		"duplicate": {
			opt: &TrainerOptions{
				Candidates: []models.Kind{models.KindLinear, models.KindLinear},
				Models:     models.NewDefaultOptions(0),
			},
			err: ErrDuplicateCandidate,
		},
		"unknown kind": {
			opt: &TrainerOptions{
				Candidates: []models.Kind{models.Kind(9)},
				Models:     models.NewDefaultOptions(0),
			},
			err: models.ErrUnknownKind,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, opt.Metrics)
			assert.Equal(t, models.Kinds(), opt.Candidates)
		})
	}
}

func TestTrainerConstantDemand(t *testing.T) {
	records := testRecords("LOC_001", 0, 100, constant(20))
	eng, train, test := deriveSplit(t, records, 80)

	reg := prometheus.NewRegistry()
	opt := testTrainerOptions(1)
	opt.Metrics = metrics.NewPipeline(reg)

	trainer, err := NewTrainer(opt)
	require.NoError(t, err)
	res, err := trainer.Fit(eng, train, test)
	require.NoError(t, err)

	assert.Equal(t, 30, res.DroppedTrain, "first rows without a 30 day lag are dropped")
	assert.Equal(t, 0, res.DroppedTest)
	assert.Equal(t, 50, res.TrainRows)
	assert.Equal(t, 20, res.TestRows)
	assert.Equal(t, 30.0, testutil.ToFloat64(opt.Metrics.DroppedRows.WithLabelValues("train")))

	require.Len(t, res.Evaluations, 3)
	for _, e := range res.Evaluations {
		assert.InDelta(t, 0, e.RMSE, 1e-6, e.Kind.String())
		assert.True(t, e.MAPEDefined)
	}

	// every candidate ties so the kind order decides
	model := res.Model
	assert.Equal(t, models.KindBagging, model.Kind())
	assert.Equal(t, testStart.AddDate(0, 0, 79), model.TrainEndTime())
	assert.Equal(t, 1.0, testutil.ToFloat64(opt.Metrics.SelectedModel.WithLabelValues(models.KindBagging.String())))
	assert.Equal(t, 0.0, testutil.ToFloat64(opt.Metrics.SelectedModel.WithLabelValues(models.KindLinear.String())))

	engine, err := NewEngine(location.NewSimulated(1), nil)
	require.NoError(t, err)
	demand, err := engine.Predict(context.Background(), model, "LOC_001", testStart.AddDate(0, 0, 100), history(t, records))
	require.NoError(t, err)
	assert.Equal(t, 20, demand)
}

func TestTrainerDeterministic(t *testing.T) {
	records := append(
		testRecords("LOC_001", 0, 120, weekly),
		testRecords("LOC_002", 0, 120, func(i int) float64 { return 2 * weekly(i) })...,
	)
	for i := range records[120:] {
		records[120+i].City = "Chennai"
		records[120+i].Region = "South"
		records[120+i].Latitude = 13.0827
		records[120+i].Longitude = 80.2707
	}

	fit := func() *FitResult {
		eng, train, test := deriveSplit(t, records, 100)
		trainer, err := NewTrainer(testTrainerOptions(7))
		require.NoError(t, err)
		res, err := trainer.Fit(eng, train, test)
		require.NoError(t, err)
		return res
	}

	first := fit()
	second := fit()
	assert.Equal(t, first.Evaluations, second.Evaluations)
	assert.Equal(t, first.Model.Kind(), second.Model.Kind())

	m1, err := first.Model.Model()
	require.NoError(t, err)
	m2, err := second.Model.Model()
	require.NoError(t, err)
	assert.JSONEq(t, string(m1.Regressor), string(m2.Regressor))

	for i := 1; i < len(first.Evaluations); i++ {
		assert.False(t, first.Evaluations[i].Less(first.Evaluations[i-1]), "evaluations are ranked")
	}
	assert.Equal(t, first.Evaluations[0], first.Model.Evaluation())
}

func TestTrainerErrors(t *testing.T) {
	short := testRecords("LOC_001", 0, 40, constant(10))
	long := testRecords("LOC_001", 0, 60, constant(10))

	testData := map[string]struct {
		setup func(t *testing.T) (*feature.Engineer, *feature.Frame, *feature.Frame)
		err   error
	}{
		"no engineer": {
			setup: func(t *testing.T) (*feature.Engineer, *feature.Frame, *feature.Frame) {
				_, train, test := deriveSplit(t, long, 50)
				return nil, train, test
			},
			err: ErrNoEngineer,
		},
		"all training rows missing lags": {
			setup: func(t *testing.T) (*feature.Engineer, *feature.Frame, *feature.Frame) {
				return deriveSplit(t, short, 25)
			},
			err: ErrInsufficientTrainingData,
		},
		"empty test": {
			setup: func(t *testing.T) (*feature.Engineer, *feature.Frame, *feature.Frame) {
				return deriveSplit(t, long, 100)
			},
			err: ErrInsufficientTestData,
		},
		"schema mismatch": {
			setup: func(t *testing.T) (*feature.Engineer, *feature.Frame, *feature.Frame) {
				_, train, test := deriveSplit(t, long, 50)
				opt := feature.NewDefaultOptions()
				opt.Lags = []int{1}
				eng, err := feature.NewEngineer(opt)
				require.NoError(t, err)
				_, err = eng.Derive(long)
				require.NoError(t, err)
				return eng, train, test
			},
			err: ErrSchemaMismatch,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			eng, train, test := td.setup(t)
			trainer, err := NewTrainer(testTrainerOptions(1))
			require.NoError(t, err)
			_, err = trainer.Fit(eng, train, test)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
