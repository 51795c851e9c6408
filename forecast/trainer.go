package forecast

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aouyang1/go-workforce/feature"
	"github.com/aouyang1/go-workforce/models"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInsufficientTrainingData = errors.New("insufficient training data after removing rows with missing features")
	ErrInsufficientTestData     = errors.New("insufficient test data after removing rows with missing features")
	ErrSchemaMismatch           = feature.ErrSchemaMismatch
	ErrNoEngineer               = errors.New("no fitted feature engineer")
)

// FitResult is the outcome of a training run
type FitResult struct {
	Model *TrainedModel

	// Evaluations holds every candidate's held out scores in rank order
	Evaluations []Evaluation

	DroppedTrain int
	DroppedTest  int
	TrainRows    int
	TestRows     int
}

// Trainer fits every candidate regressor and selects the best one on held out data
type Trainer struct {
	opt *TrainerOptions
}

func NewTrainer(opt *TrainerOptions) (*Trainer, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Trainer{opt: opt}, nil
}

type candidate struct {
	regressor models.Regressor
	scaler    *models.StandardScaler
	eval      *Evaluation
}

// Fit trains the candidates on train and scores them on test. Rows with a missing feature
// are removed from both partitions first and the counts are reported. Candidates train
// concurrently, each on its own copy of the matrices, and the selection depends only on
// their scores.
func (t *Trainer) Fit(eng *feature.Engineer, train, test *feature.Frame) (*FitResult, error) {
	if eng == nil || eng.Encoder() == nil {
		return nil, ErrNoEngineer
	}
	if err := eng.Schema().Compare(train.Schema); err != nil {
		return nil, fmt.Errorf("training frame, %w", err)
	}
	if err := eng.Schema().Compare(test.Schema); err != nil {
		return nil, fmt.Errorf("test frame, %w", err)
	}

	train, droppedTrain := train.DropMissing()
	test, droppedTest := test.DropMissing()
	t.opt.Metrics.DroppedRows.WithLabelValues("train").Add(float64(droppedTrain))
	t.opt.Metrics.DroppedRows.WithLabelValues("test").Add(float64(droppedTest))
	if droppedTrain > 0 || droppedTest > 0 {
		slog.Info("dropped rows with missing features",
			"train_dropped", droppedTrain, "train_rows", train.Len(),
			"test_dropped", droppedTest, "test_rows", test.Len(),
		)
	}
	if train.Len() == 0 {
		return nil, ErrInsufficientTrainingData
	}
	if test.Len() == 0 {
		return nil, ErrInsufficientTestData
	}

	regressors := make([]models.Regressor, len(t.opt.Candidates))
	for i, kind := range t.opt.Candidates {
		reg, err := models.New(kind, t.opt.Models)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize %s, %w", kind, err)
		}
		regressors[i] = reg
	}

	candidates := make([]candidate, len(regressors))
	var g errgroup.Group
	for i, reg := range regressors {
		g.Go(func() error {
			c, err := t.fitCandidate(reg, train, test)
			if err != nil {
				return fmt.Errorf("unable to fit %s, %w", reg.Kind(), err)
			}
			candidates[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		switch {
		case a.eval.Less(*b.eval):
			return -1
		case b.eval.Less(*a.eval):
			return 1
		}
		return 0
	})

	evals := make([]Evaluation, len(candidates))
	for i, c := range candidates {
		evals[i] = *c.eval
		t.opt.Metrics.ModelRMSE.WithLabelValues(c.eval.Kind.String()).Set(c.eval.RMSE)
		selected := 0.0
		if i == 0 {
			selected = 1.0
		}
		t.opt.Metrics.SelectedModel.WithLabelValues(c.eval.Kind.String()).Set(selected)
	}

	best := candidates[0]
	slog.Info("selected model",
		"model", best.eval.Kind.String(),
		"rmse", best.eval.RMSE,
		"mae", best.eval.MAE,
		"r2", best.eval.R2,
	)

	var trainEnd time.Time
	for _, k := range train.Keys {
		if k.Date.After(trainEnd) {
			trainEnd = k.Date
		}
	}

	return &FitResult{
		Model: &TrainedModel{
			regressor:    best.regressor,
			scaler:       best.scaler,
			engineer:     eng,
			evaluations:  evals,
			trainEndTime: trainEnd,
		},
		Evaluations:  evals,
		DroppedTrain: droppedTrain,
		DroppedTest:  droppedTest,
		TrainRows:    train.Len(),
		TestRows:     test.Len(),
	}, nil
}

func (t *Trainer) fitCandidate(reg models.Regressor, train, test *feature.Frame) (candidate, error) {
	start := time.Now()

	// Matrix copies the rows so every candidate owns its inputs
	xTrain, err := train.Matrix()
	if err != nil {
		return candidate{}, err
	}
	xTest, err := test.Matrix()
	if err != nil {
		return candidate{}, err
	}
	yTrain := mat.NewDense(train.Len(), 1, slices.Clone(train.Y))

	var scaler *models.StandardScaler
	if reg.Kind().Standardized() {
		scaler = new(models.StandardScaler)
		if err := scaler.Fit(xTrain); err != nil {
			return candidate{}, fmt.Errorf("unable to fit scaler, %w", err)
		}
		if xTrain, err = scaler.Transform(xTrain); err != nil {
			return candidate{}, err
		}
		if xTest, err = scaler.Transform(xTest); err != nil {
			return candidate{}, err
		}
	}

	if err := reg.Fit(xTrain, yTrain); err != nil {
		return candidate{}, err
	}
	predicted, err := reg.Predict(xTest)
	if err != nil {
		return candidate{}, err
	}
	eval, err := NewEvaluation(reg.Kind(), predicted, test.Y)
	if err != nil {
		return candidate{}, err
	}
	t.opt.Metrics.TrainDuration.WithLabelValues(reg.Kind().String()).Observe(time.Since(start).Seconds())
	if !eval.MAPEDefined {
		slog.Warn("mean absolute percent error undefined for zero actual values", "model", reg.Kind().String())
	}
	return candidate{
		regressor: reg,
		scaler:    scaler,
		eval:      eval,
	}, nil
}
