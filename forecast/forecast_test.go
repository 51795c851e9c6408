package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/models"
	"github.com/aouyang1/go-workforce/timedataset"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testRecords(entity string, startDay, n int, demand func(i int) float64) []timedataset.Record {
	records := make([]timedataset.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, timedataset.Record{
			EntityID:          entity,
			City:              "Mumbai",
			Region:            "West",
			Date:              testStart.AddDate(0, 0, startDay+i),
			Latitude:          19.0760,
			Longitude:         72.8777,
			Demand:            demand(i),
			Temperature:       25,
			GDPGrowth:         0.06,
			InflationRate:     0.04,
			BusinessCount:     500,
			TrafficDensity:    0.5,
			AvgSpeedKmph:      30,
			PopulationDensity: 20000,
			AvgIncome:         50000,
			EmploymentRate:    0.7,
		})
	}
	return records
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func testTrainerOptions(seed uint64) *TrainerOptions {
	opt := NewDefaultTrainerOptions(seed)
	opt.Models.Forest.Trees = 10
	opt.Models.Boosting.Estimators = 20
	return opt
}

// deriveSplit derives the records and splits them at the given day offset
func deriveSplit(t *testing.T, records []timedataset.Record, cutoffDay int) (*feature.Engineer, *feature.Frame, *feature.Frame) {
	t.Helper()
	eng, err := feature.NewEngineer(nil)
	require.NoError(t, err)
	f, err := eng.Derive(records)
	require.NoError(t, err)
	train, test := f.Split(testStart.AddDate(0, 0, cutoffDay))
	return eng, train, test
}

func history(t *testing.T, records []timedataset.Record) *timedataset.Collection {
	t.Helper()
	c, err := timedataset.NewCollection(records)
	require.NoError(t, err)
	return c
}

// fixedRegressor returns the same value for every row and records the last input
type fixedRegressor struct {
	val  float64
	last []float64
}

func (f *fixedRegressor) Fit(x, y mat.Matrix) error {
	return nil
}

func (f *fixedRegressor) Predict(x mat.Matrix) ([]float64, error) {
	m, _ := x.Dims()
	f.last = mat.Row(nil, m-1, x)
	res := make([]float64, m)
	for i := range res {
		res[i] = f.val
	}
	return res, nil
}

func (f *fixedRegressor) Score(x, y mat.Matrix) (float64, error) {
	return 0, nil
}

func (f *fixedRegressor) Kind() models.Kind {
	return models.KindBagging
}

func fixedModel(t *testing.T, records []timedataset.Record, val float64) (*TrainedModel, *fixedRegressor) {
	t.Helper()
	eng, err := feature.NewEngineer(nil)
	require.NoError(t, err)
	_, err = eng.Derive(records)
	require.NoError(t, err)

	reg := &fixedRegressor{val: val}
	return &TrainedModel{
		regressor: reg,
		engineer:  eng,
	}, reg
}

var errUpstream = errors.New("upstream timeout")

type failingProvider struct{}

func (failingProvider) NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (location.Businesses, error) {
	return location.Businesses{}, errUpstream
}

func (failingProvider) TrafficAnalytics(ctx context.Context, lat, lon float64) (location.Traffic, error) {
	return location.Traffic{}, errUpstream
}

func (failingProvider) Demographics(ctx context.Context, lat, lon float64) (location.Demographics, error) {
	return location.Demographics{}, errUpstream
}
