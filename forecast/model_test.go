package forecast

import (
	"bytes"
	"context"
	"testing"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainLinear(t *testing.T) (*TrainedModel, *FitResult) {
	t.Helper()
	records := testRecords("LOC_001", 0, 120, weekly)
	eng, train, test := deriveSplit(t, records, 100)

	opt := testTrainerOptions(3)
	opt.Candidates = []models.Kind{models.KindLinear}
	trainer, err := NewTrainer(opt)
	require.NoError(t, err)
	res, err := trainer.Fit(eng, train, test)
	require.NoError(t, err)
	return res.Model, res
}

func TestModelRoundTrip(t *testing.T) {
	trained, _ := trainLinear(t)
	require.NotNil(t, trained.Scaler(), "linear regression trains on standardized inputs")

	m, err := trained.Model()
	require.NoError(t, err)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, m.Kind, restored.Kind)
	assert.Equal(t, m.Evaluations, restored.Evaluations)
	assert.True(t, m.TrainEndTime.Equal(restored.TrainEndTime))

	loaded, err := NewFromModel(restored)
	require.NoError(t, err)
	assert.Equal(t, trained.Schema().Names(), loaded.Schema().Names())

	records := testRecords("LOC_001", 0, 120, weekly)
	hist := history(t, records)
	engine, err := NewEngine(location.NewSimulated(5), nil)
	require.NoError(t, err)

	for day := 120; day < 127; day++ {
		q := Query{EntityID: "LOC_001", Date: testStart.AddDate(0, 0, day)}
		expected, err := engine.PredictQuery(context.Background(), trained, q, hist)
		require.NoError(t, err)
		actual, err := engine.PredictQuery(context.Background(), loaded, q, hist)
		require.NoError(t, err)
		assert.InDelta(t, expected.Raw, actual.Raw, 1e-9)
		assert.Equal(t, expected.Demand, actual.Demand)
	}
}

func TestPredictFrame(t *testing.T) {
	records := testRecords("LOC_001", 0, 120, weekly)
	_, _, test := deriveSplit(t, records, 100)
	test, _ = test.DropMissing()

	trained, _ := trainLinear(t)
	predicted, err := trained.PredictFrame(test)
	require.NoError(t, err)
	require.Len(t, predicted, test.Len())

	rmse, err := RMSE(predicted, test.Y)
	require.NoError(t, err)
	assert.InDelta(t, trained.Evaluation().RMSE, rmse, 1e-9)

	opt := feature.NewDefaultOptions()
	opt.RollingWindows = []int{7}
	eng, err := feature.NewEngineer(opt)
	require.NoError(t, err)
	other, err := eng.Derive(records)
	require.NoError(t, err)
	_, err = trained.PredictFrame(other)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestNewFromModelErrors(t *testing.T) {
	trained, _ := trainLinear(t)

	testData := map[string]struct {
		modify func(m *Model)
		err    error
	}{
		"no features": {
			modify: func(m *Model) { m.Features = nil },
			err:    ErrNoFeatures,
		},
		"schema mismatch": {
			modify: func(m *Model) {
				opt := feature.NewDefaultOptions()
				opt.Lags = []int{1, 7}
				schema, err := opt.Schema()
				require.NoError(t, err)
				m.Schema = schema
			},
			err: ErrSchemaMismatch,
		},
		"kind mismatch": {
			modify: func(m *Model) { m.Kind = models.KindBoosting },
			err:    models.ErrUnknownKind,
		},
		"missing scaler": {
			modify: func(m *Model) { m.Scaler = nil },
			err:    models.ErrScalerNotFitted,
		},
		"no encoder": {
			modify: func(m *Model) { m.Encoder = nil },
			err:    feature.ErrNotFitted,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			m, err := trained.Model()
			require.NoError(t, err)
			td.modify(&m)
			_, err = NewFromModel(m)
			assert.ErrorIs(t, err, td.err)
		})
	}

	var untrained *TrainedModel
	_, err := untrained.Model()
	assert.ErrorIs(t, err, ErrUntrainedModel)
}

func TestModelTablePrint(t *testing.T) {
	trained, _ := trainLinear(t)
	m, err := trained.Model()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.TablePrint(&buf, "", "  "))
	out := buf.String()
	assert.Contains(t, out, "Forecast:")
	assert.Contains(t, out, "Model: linear_regression")
	assert.Contains(t, out, "Scores:")
	assert.Contains(t, out, "Weights:")
	assert.Contains(t, out, feature.LagName(7))
	assert.Contains(t, out, "intercept")
}
