package models

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultIterations = 1000
	DefaultTolerance  = 1e-6
)

var (
	ErrNegativeLambda     = errors.New("negative lambda")
	ErrNegativeIterations = errors.New("negative iterations")
	ErrNegativeTolerance  = errors.New("negative tolerance")
)

// LinearOptions represents input options to run the linear regression
type LinearOptions struct {
	// Lambda represents the L1 multiplier. 0.0 results in converging to Ordinary Least
	// Squares (OLS).
	Lambda float64

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int

	// Tolerance is the smallest coefficient change relative to the largest coefficient on
	// each iteration to determine when to stop iterating.
	Tolerance float64
}

// NewDefaultLinearOptions returns options that fit ordinary least squares
func NewDefaultLinearOptions() *LinearOptions {
	return &LinearOptions{
		Lambda:     0,
		Iterations: DefaultIterations,
		Tolerance:  DefaultTolerance,
	}
}

// Validate runs basic validation on linear options
func (l *LinearOptions) Validate() (*LinearOptions, error) {
	if l == nil {
		l = NewDefaultLinearOptions()
	}
	if l.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	return l, nil
}

// LinearRegression fits least squares by coordinate descent on mean centered features. The
// intercept is recovered from the means and is never penalized. Columns without variance
// keep a zero coefficient.
type LinearRegression struct {
	opt *LinearOptions

	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// NewLinearRegression initializes a linear model ready for fitting
func NewLinearRegression(opt *LinearOptions) (*LinearRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LinearRegression{
		opt: opt,
	}, nil
}

func (l *LinearRegression) Kind() Kind {
	return KindLinear
}

// Fit the model according to the given training data
func (l *LinearRegression) Fit(x, y mat.Matrix) error {
	if l.opt == nil {
		return ErrNoOptions
	}
	cols, yArr, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	m, n := len(yArr), len(cols)

	xMeans := make([]float64, n)
	xdot := make([]float64, n)
	for j, col := range cols {
		xMeans[j] = stat.Mean(col, nil)
		floats.AddConst(-xMeans[j], col)
		xdot[j] = floats.Dot(col, col)
	}
	yMean := stat.Mean(yArr, nil)

	// residual of the centered target against the current betas
	residual := make([]float64, m)
	copy(residual, yArr)
	floats.AddConst(-yMean, residual)

	beta := make([]float64, n)
	for i := 0; i < l.opt.Iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		// loop through all features and minimize loss function
		for j := 0; j < n; j++ {
			// constant columns carry no information once centered
			if xdot[j] == 0 {
				continue
			}
			betaCurr := beta[j]
			betaNext := floats.Dot(cols[j], residual)/xdot[j] + betaCurr
			betaNext = SoftThreshold(betaNext, l.opt.Lambda/xdot[j])

			if delta := betaNext - betaCurr; delta != 0 {
				floats.AddScaled(residual, -delta, cols[j])
				maxUpdate = math.Max(maxUpdate, math.Abs(delta))
			}
			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			beta[j] = betaNext
		}

		// break early if we've achieved the desired tolerance
		if maxUpdate <= l.opt.Tolerance*maxCoef {
			break
		}
	}

	l.Coef = beta
	l.Intercept = yMean - floats.Dot(beta, xMeans)
	return nil
}

// Predict using the linear model
func (l *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.Coef == nil {
		return nil, ErrNotFitted
	}
	if err := predictValidate(x, len(l.Coef)); err != nil {
		return nil, err
	}

	coefMx := mat.NewVecDense(len(l.Coef), l.Coef)
	var res mat.VecDense
	res.MulVec(x, coefMx)

	pred := make([]float64, res.Len())
	for i := range pred {
		pred[i] = res.AtVec(i) + l.Intercept
	}
	return pred, nil
}

// Score computes the coefficient of determination of the prediction
func (l *LinearRegression) Score(x, y mat.Matrix) (float64, error) {
	return score(l, x, y)
}

// SoftThreshold returns 0.0 if the value is less than or equal to the gamma input
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}
