// Package workforce forecasts daily workforce demand per location. A Forecaster derives
// lag, rolling, calendar and location intelligence features from a daily history, trains
// a set of candidate regressors on a chronological split, keeps the one with the lowest
// held out error and predicts single future dates from the growing history.
package workforce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/forecast"
	"github.com/aouyang1/go-workforce/location"
	"github.com/aouyang1/go-workforce/timedataset"

	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrEmptyHistory  = errors.New("no history or uninitialized")
	ErrNotFit        = errors.New("forecaster has not been fit")
	ErrNoFeatureOpts = errors.New("no feature options in model")
)

// Forecaster runs the training pipeline and serves point forecasts from the selected model
type Forecaster struct {
	opt    *Options
	engine *forecast.Engine

	model      *forecast.TrainedModel
	history    *timedataset.Collection
	fitResults *Results
}

// New creates a Forecaster that looks up live location intelligence with the provider. If
// no options are provided a default is used.
func New(provider location.Provider, opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	engine, err := forecast.NewEngine(provider, opt.Engine)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast engine, %w", err)
	}
	return &Forecaster{
		opt:    opt,
		engine: engine,
	}, nil
}

// NewFromModel creates a Forecaster from a model produced by a previous call to Model. The
// history must be loaded with SetHistory before predicting.
func NewFromModel(provider location.Provider, model Model, opt *Options) (*Forecaster, error) {
	if model.Forecast.Features == nil {
		return nil, ErrNoFeatureOpts
	}
	if opt == nil {
		opt = NewDefaultOptions(0)
	}
	opt.Cutoff = model.Cutoff
	if opt.Features != nil && opt.Features.Holidays != nil && model.Forecast.Features.Holidays != nil {
		model.Forecast.Features.Holidays.Holidays = opt.Features.Holidays.Holidays
	}
	opt.Features = model.Forecast.Features

	f, err := New(provider, opt)
	if err != nil {
		return nil, err
	}
	trained, err := forecast.NewFromModel(model.Forecast)
	if err != nil {
		return nil, fmt.Errorf("unable to load forecast model, %w", err)
	}
	f.model = trained
	return f, nil
}

// Fit derives the features of the records, splits them at the cutoff and trains every
// candidate. The records become the history future predictions are built from.
func (f *Forecaster) Fit(records []timedataset.Record) error {
	history, err := timedataset.NewCollection(records)
	if err != nil {
		return fmt.Errorf("unable to create training history, %w", err)
	}

	eng, err := feature.NewEngineer(f.opt.Features)
	if err != nil {
		return fmt.Errorf("unable to initialize feature engineer, %w", err)
	}
	frame, err := eng.Derive(records)
	if err != nil {
		return fmt.Errorf("unable to derive features, %w", err)
	}
	train, test := frame.Split(f.opt.Cutoff)
	slog.Info("split derived features",
		"cutoff", f.opt.Cutoff.Format(time.DateOnly),
		"train_rows", train.Len(), "test_rows", test.Len(),
		"entities", len(history.EntityIDs()),
	)

	trainer, err := forecast.NewTrainer(f.opt.Trainer)
	if err != nil {
		return fmt.Errorf("unable to initialize trainer, %w", err)
	}
	res, err := trainer.Fit(eng, train, test)
	if err != nil {
		return fmt.Errorf("unable to fit models, %w", err)
	}

	test, _ = test.DropMissing()
	predicted, err := res.Model.PredictFrame(test)
	if err != nil {
		return fmt.Errorf("unable to get predicted values from test set, %w", err)
	}

	fitResults := &Results{
		EntityIDs:    make([]string, test.Len()),
		T:            make([]time.Time, test.Len()),
		Actual:       test.Y,
		Predicted:    predicted,
		Evaluations:  res.Evaluations,
		DroppedTrain: res.DroppedTrain,
		DroppedTest:  res.DroppedTest,
	}
	for i, k := range test.Keys {
		fitResults.EntityIDs[i] = k.EntityID
		fitResults.T[i] = k.Date
	}

	f.model = res.Model
	f.history = history
	f.fitResults = fitResults
	return nil
}

// SetHistory replaces the history predictions are built from
func (f *Forecaster) SetHistory(records []timedataset.Record) error {
	history, err := timedataset.NewCollection(records)
	if err != nil {
		return fmt.Errorf("unable to create history, %w", err)
	}
	f.history = history
	return nil
}

func (f *Forecaster) ready() error {
	if f.model == nil {
		return ErrNotFit
	}
	if f.history == nil {
		return ErrEmptyHistory
	}
	return nil
}

// Predict forecasts the demand of an entity on the target date
func (f *Forecaster) Predict(ctx context.Context, entityID string, target time.Time) (int, error) {
	if err := f.ready(); err != nil {
		return 0, err
	}
	return f.engine.Predict(ctx, f.model, entityID, target, f.history)
}

// PredictQueries forecasts independent queries concurrently. Results are in query order.
func (f *Forecaster) PredictQueries(ctx context.Context, queries []forecast.Query) ([]forecast.Prediction, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	return f.engine.PredictBatch(ctx, f.model, queries, f.history)
}

// Horizon forecasts every entity at each offset in days from the start date
func (f *Forecaster) Horizon(ctx context.Context, entityIDs []string, start time.Time, daysAhead []int) ([]forecast.Prediction, error) {
	queries := make([]forecast.Query, 0, len(entityIDs)*len(daysAhead))
	for _, id := range entityIDs {
		for _, d := range daysAhead {
			queries = append(queries, forecast.Query{EntityID: id, Date: start.AddDate(0, 0, d)})
		}
	}
	return f.PredictQueries(ctx, queries)
}

// TrainedModel returns the selected model
func (f *Forecaster) TrainedModel() *forecast.TrainedModel {
	return f.model
}

// History returns the history predictions are built from
func (f *Forecaster) History() *timedataset.Collection {
	return f.history
}

// FitResults returns the held out predictions and the scores of every candidate
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// Model generates a serializable representation of the selected model. This can be used to
// initialize a new Forecaster for immediate predictions skipping the training step.
func (f *Forecaster) Model() (Model, error) {
	if f.model == nil {
		return Model{}, ErrNotFit
	}
	m, err := f.model.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch forecast model, %w", err)
	}
	return Model{
		Cutoff:   f.opt.Cutoff,
		Forecast: m,
	}, nil
}

// PlotFit uses the Apache Echarts library to generate an html page comparing the held out
// actual and predicted demand of every entity, followed by the scores of each candidate
func (f *Forecaster) PlotFit(w io.Writer) error {
	res := f.FitResults()
	if res == nil {
		return ErrNotFit
	}

	page := components.NewPage()
	for _, id := range f.history.EntityIDs() {
		t, actual, predicted := res.Entity(id)
		if len(t) == 0 {
			continue
		}
		page.AddCharts(
			LineTSeries(
				fmt.Sprintf("%s Holdout", id),
				[]string{"Actual", "Predicted"},
				t,
				[][]float64{actual, predicted},
			),
		)
	}
	page.AddCharts(BarEvaluations(res.Evaluations))
	return page.Render(w)
}
