package models

import (
	"errors"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNonPositiveEstimators = errors.New("number of estimators must be positive")
	ErrInvalidLearningRate   = errors.New("learning rate must be in (0, 1]")
	ErrInvalidSubsample      = errors.New("subsample must be in (0, 1]")
)

// BoostingOptions represents input options to fit a gradient boosted ensemble
type BoostingOptions struct {
	Estimators   int
	LearningRate float64
	Tree         *TreeOptions

	// Subsample is the fraction of observations drawn without replacement for every stage.
	// 1.0 uses every observation.
	Subsample float64
}

func NewDefaultBoostingOptions() *BoostingOptions {
	return &BoostingOptions{
		Estimators:   100,
		LearningRate: 0.1,
		Tree: &TreeOptions{
			MaxDepth:        3,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		Subsample: 1.0,
	}
}

func (b *BoostingOptions) Validate() (*BoostingOptions, error) {
	if b == nil {
		b = NewDefaultBoostingOptions()
	}
	if b.Estimators <= 0 {
		return nil, ErrNonPositiveEstimators
	}
	if b.LearningRate <= 0 || b.LearningRate > 1 {
		return nil, ErrInvalidLearningRate
	}
	if b.Subsample <= 0 || b.Subsample > 1 {
		return nil, ErrInvalidSubsample
	}
	tree, err := b.Tree.Validate()
	if err != nil {
		return nil, err
	}
	b.Tree = tree
	return b, nil
}

// GradientBoosting fits a sequence of shallow regression trees to the residuals of the
// running prediction under squared error loss, starting from the target mean.
type GradientBoosting struct {
	opt  *BoostingOptions
	seed uint64

	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Trees        []*Tree `json:"trees"`
}

func NewGradientBoosting(opt *BoostingOptions, seed uint64) (*GradientBoosting, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &GradientBoosting{
		opt:  opt,
		seed: seed,
	}, nil
}

func (g *GradientBoosting) Kind() Kind {
	return KindBoosting
}

// Fit the model according to the given training data
func (g *GradientBoosting) Fit(x, y mat.Matrix) error {
	if g.opt == nil {
		return ErrNoOptions
	}
	cols, yArr, err := fitValidate(x, y)
	if err != nil {
		return err
	}
	m := len(yArr)

	g.Init = stat.Mean(yArr, nil)
	g.LearningRate = g.opt.LearningRate
	g.Trees = make([]*Tree, 0, g.opt.Estimators)

	rng := rand.New(rand.NewPCG(g.seed, uint64(g.opt.Estimators)))

	pred := make([]float64, m)
	floats.AddConst(g.Init, pred)
	residual := make([]float64, m)
	row := make([]float64, len(cols))

	all := make([]int, m)
	for i := range all {
		all[i] = i
	}
	sampleSize := max(1, int(g.opt.Subsample*float64(m)))

	for e := 0; e < g.opt.Estimators; e++ {
		floats.SubTo(residual, yArr, pred)

		idx := all
		if sampleSize < m {
			idx = rng.Perm(m)[:sampleSize]
		}

		tree := newTree(g.opt.Tree, rng)
		tree.fit(cols, residual, idx)
		g.Trees = append(g.Trees, tree)

		for i := range pred {
			for j := range cols {
				row[j] = cols[j][i]
			}
			pred[i] += g.LearningRate * tree.predictRow(row)
		}
	}
	return nil
}

// Predict sums the scaled tree predictions on top of the initial mean
func (g *GradientBoosting) Predict(x mat.Matrix) ([]float64, error) {
	if len(g.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if err := predictValidate(x, g.Trees[0].Features); err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	res := make([]float64, m)
	floats.AddConst(g.Init, res)
	for _, tree := range g.Trees {
		tree.predictAdd(x, g.LearningRate, res)
	}
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (g *GradientBoosting) Score(x, y mat.Matrix) (float64, error) {
	return score(g, x, y)
}
