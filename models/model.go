// Package models is a collection of regressors used to forecast workforce demand: a
// bagged random forest, least squares gradient boosting and a linear least squares fit
package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Kind is the closed set of candidate regressors
type Kind int

const (
	KindBagging Kind = iota
	KindBoosting
	KindLinear
)

// Kinds returns every candidate in tie break order
func Kinds() []Kind {
	return []Kind{KindBagging, KindBoosting, KindLinear}
}

func (k Kind) String() string {
	switch k {
	case KindBagging:
		return "random_forest"
	case KindBoosting:
		return "gradient_boosting"
	case KindLinear:
		return "linear_regression"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Standardized reports whether the regressor expects standardized inputs
func (k Kind) Standardized() bool {
	return k == KindLinear
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%s, %w", s, ErrUnknownKind)
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, err := ParseKind(k.String()); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Regressor interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
	Kind() Kind
}

// New initializes an unfitted regressor of the given kind. Stochastic regressors draw all
// of their randomness from opt.Seed.
func New(kind Kind, opt *Options) (Regressor, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindBagging:
		return NewRandomForest(opt.Forest, opt.Seed)
	case KindBoosting:
		return NewGradientBoosting(opt.Boosting, opt.Seed)
	case KindLinear:
		return NewLinearRegression(opt.Linear)
	}
	return nil, fmt.Errorf("%s, %w", kind, ErrUnknownKind)
}

// Options groups the per kind options along with the seed shared by every stochastic model
type Options struct {
	Seed     uint64
	Forest   *ForestOptions
	Boosting *BoostingOptions
	Linear   *LinearOptions
}

func NewDefaultOptions(seed uint64) *Options {
	return &Options{
		Seed:     seed,
		Forest:   NewDefaultForestOptions(),
		Boosting: NewDefaultBoostingOptions(),
		Linear:   NewDefaultLinearOptions(),
	}
}

func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions(0)
	}
	var err error
	if o.Forest, err = o.Forest.Validate(); err != nil {
		return nil, err
	}
	if o.Boosting, err = o.Boosting.Validate(); err != nil {
		return nil, err
	}
	if o.Linear, err = o.Linear.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// fitValidate checks the training inputs and returns the feature columns and target values
func fitValidate(x, y mat.Matrix) ([][]float64, []float64, error) {
	if x == nil {
		return nil, nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, nil, ErrNoTargetMatrix
	}
	m, n := x.Dims()
	if m == 0 || n == 0 {
		return nil, nil, ErrEmptyTraining
	}
	ym, _ := y.Dims()
	if ym != m {
		return nil, nil, fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	cols := make([][]float64, n)
	for j := range cols {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols, mat.Col(nil, 0, y), nil
}

func predictValidate(x mat.Matrix, features int) error {
	if x == nil {
		return ErrNoDesignMatrix
	}
	_, n := x.Dims()
	if n != features {
		return fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, features, ErrFeatureLenMismatch)
	}
	return nil
}

// score computes the coefficient of determination of the regressor's predictions
func score(r Regressor, x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}
	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := r.Predict(x)
	if err != nil {
		return 0.0, err
	}

	r2 := stat.RSquaredFrom(res, mat.Col(nil, 0, y), nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}
	return r2, nil
}
