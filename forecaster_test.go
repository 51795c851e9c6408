package workforce

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/aouyang1/go-workforce/forecast"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/metrics"
	"github.com/aouyang1/go-workforce/timedataset"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCutoff = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func simulateRecords(tb testing.TB, seed uint64) []timedataset.Record {
	tb.Helper()
	opt := timedataset.NewDefaultSimulateOptions(seed)
	opt.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	opt.End = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	opt.Locations = timedataset.DefaultLocations()[:3]
	records, err := timedataset.Simulate(context.Background(), opt)
	require.NoError(tb, err)
	return records
}

func testOptions(seed uint64) *Options {
	opt := NewDefaultOptions(seed)
	opt.Cutoff = testCutoff
	opt.Trainer.Models.Forest.Trees = 10
	opt.Trainer.Models.Boosting.Estimators = 20
	return opt
}

func fitForecaster(tb testing.TB, seed uint64, opt *Options) *Forecaster {
	tb.Helper()
	f, err := New(location.NewSimulated(seed), opt)
	require.NoError(tb, err)
	require.NoError(tb, f.Fit(simulateRecords(tb, seed)))
	return f
}

func TestOptionsValidate(t *testing.T) {
	opt := NewDefaultOptions(1)
	opt.Cutoff = time.Time{}
	_, err := opt.Validate()
	assert.ErrorIs(t, err, ErrUnsetCutoff)

	opt, err = (*Options)(nil).Validate()
	require.NoError(t, err)
	assert.Equal(t, DefaultCutoff, opt.Cutoff)
	assert.Same(t, opt.Metrics, opt.Trainer.Metrics)
	assert.Same(t, opt.Metrics, opt.Engine.Metrics)
}

func TestForecasterFit(t *testing.T) {
	opt := testOptions(42)
	opt.Metrics = metrics.NewPipeline(prometheus.NewRegistry())
	f := fitForecaster(t, 42, opt)

	res := f.FitResults()
	require.NotNil(t, res)
	assert.Equal(t, 90, res.DroppedTrain, "30 rows without a monthly lag per location")
	assert.Equal(t, 0, res.DroppedTest)
	assert.Len(t, res.Actual, 90)
	assert.Len(t, res.Predicted, 90)
	assert.Equal(t, 90.0, testutil.ToFloat64(opt.Metrics.DroppedRows.WithLabelValues("train")))

	require.Len(t, res.Evaluations, 3)
	for i := 1; i < len(res.Evaluations); i++ {
		assert.False(t, res.Evaluations[i].Less(res.Evaluations[i-1]))
	}
	assert.Equal(t, res.Evaluations[0].Kind, f.TrainedModel().Kind())
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), f.TrainedModel().TrainEndTime())

	for _, e := range res.Evaluations {
		assert.Positive(t, e.RMSE, e.Kind.String())
		assert.True(t, e.MAPEDefined, "simulated demand is floored above zero")
	}

	tLoc, actual, predicted := res.Entity("LOC_002")
	assert.Len(t, tLoc, 30)
	assert.Len(t, actual, 30)
	assert.Len(t, predicted, 30)
	assert.True(t, slices.IsSortedFunc(tLoc, time.Time.Compare))

	ctx := context.Background()
	for _, id := range f.History().EntityIDs() {
		demand, err := f.Predict(ctx, id, time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, demand, 5)
	}

	_, err := f.Predict(ctx, "LOC_005", time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, forecast.ErrEntityNotFound)
}

func TestForecasterHorizon(t *testing.T) {
	f := fitForecaster(t, 3, testOptions(3))

	ids := []string{"LOC_001", "LOC_003"}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	daysAhead := []int{30, 90, 180}

	preds, err := f.Horizon(context.Background(), ids, start, daysAhead)
	require.NoError(t, err)
	require.Len(t, preds, len(ids)*len(daysAhead))

	for i, p := range preds {
		assert.Equal(t, ids[i/len(daysAhead)], p.EntityID)
		assert.Equal(t, start.AddDate(0, 0, daysAhead[i%len(daysAhead)]), p.Date)
		assert.GreaterOrEqual(t, p.Demand, 5)
		assert.True(t, p.Fallback, "no history within the 90 day window")
	}
}

func TestForecasterDeterministic(t *testing.T) {
	first := fitForecaster(t, 11, testOptions(11))
	second := fitForecaster(t, 11, testOptions(11))

	m1, err := first.Model()
	require.NoError(t, err)
	m2, err := second.Model()
	require.NoError(t, err)

	b1, err := json.Marshal(m1)
	require.NoError(t, err)
	b2, err := json.Marshal(m2)
	require.NoError(t, err)
	assert.JSONEq(t, string(b1), string(b2))
	assert.Equal(t, first.FitResults(), second.FitResults())
}

func TestForecasterModelRoundTrip(t *testing.T) {
	records := simulateRecords(t, 5)
	f, err := New(location.NewSimulated(5), testOptions(5))
	require.NoError(t, err)
	require.NoError(t, f.Fit(records))

	m, err := f.Model()
	require.NoError(t, err)
	data, err := json.MarshalIndent(m, "", "  ")
	require.NoError(t, err)

	var restored Model
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, testCutoff.Equal(restored.Cutoff))

	loaded, err := NewFromModel(location.NewSimulated(5), restored, nil)
	require.NoError(t, err)

	ctx := context.Background()
	target := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	_, err = loaded.Predict(ctx, "LOC_001", target)
	assert.ErrorIs(t, err, ErrEmptyHistory)

	require.NoError(t, loaded.SetHistory(records))
	for _, id := range []string{"LOC_001", "LOC_002", "LOC_003"} {
		expected, err := f.Predict(ctx, id, target)
		require.NoError(t, err)
		actual, err := loaded.Predict(ctx, id, target)
		require.NoError(t, err)
		assert.Equal(t, expected, actual, id)
	}

	_, err = NewFromModel(location.NewSimulated(5), Model{}, nil)
	assert.ErrorIs(t, err, ErrNoFeatureOpts)
}

func TestForecasterNotFit(t *testing.T) {
	f, err := New(location.NewSimulated(1), nil)
	require.NoError(t, err)

	_, err = f.Predict(context.Background(), "LOC_001", time.Now())
	assert.ErrorIs(t, err, ErrNotFit)
	_, err = f.Model()
	assert.ErrorIs(t, err, ErrNotFit)
	assert.ErrorIs(t, f.PlotFit(nil), ErrNotFit)

	assert.Error(t, f.Fit(nil))

	_, err = New(nil, nil)
	assert.ErrorIs(t, err, forecast.ErrNilProvider)
}
