package models

import (
	"errors"
	"math/rand/v2"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrNonPositiveTrees = errors.New("number of trees must be positive")

// ForestOptions represents input options to fit a random forest
type ForestOptions struct {
	Trees int
	Tree  *TreeOptions

	// Bootstrap draws every tree's training set with replacement
	Bootstrap bool

	// Parallelization sets how many trees to fit in parallel. More will increase memory and
	// compute usage.
	Parallelization int
}

func NewDefaultForestOptions() *ForestOptions {
	return &ForestOptions{
		Trees:           100,
		Tree:            NewDefaultTreeOptions(),
		Bootstrap:       true,
		Parallelization: runtime.GOMAXPROCS(0),
	}
}

func (f *ForestOptions) Validate() (*ForestOptions, error) {
	if f == nil {
		f = NewDefaultForestOptions()
	}
	if f.Trees <= 0 {
		return nil, ErrNonPositiveTrees
	}
	tree, err := f.Tree.Validate()
	if err != nil {
		return nil, err
	}
	f.Tree = tree
	if f.Parallelization <= 0 || f.Parallelization > f.Trees {
		f.Parallelization = f.Trees
	}
	return f, nil
}

// RandomForest averages regression trees fitted on bootstrap samples of the training data.
// Tree i draws from its own generator seeded with (seed, i), so the fit does not depend on
// scheduling.
type RandomForest struct {
	opt  *ForestOptions
	seed uint64

	Trees []*Tree `json:"trees"`
}

func NewRandomForest(opt *ForestOptions, seed uint64) (*RandomForest, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RandomForest{
		opt:  opt,
		seed: seed,
	}, nil
}

func (f *RandomForest) Kind() Kind {
	return KindBagging
}

// Fit the model according to the given training data
func (f *RandomForest) Fit(x, y mat.Matrix) error {
	if f.opt == nil {
		return ErrNoOptions
	}
	cols, yArr, err := fitValidate(x, y)
	if err != nil {
		return err
	}

	f.Trees = make([]*Tree, f.opt.Trees)

	sem := make(chan struct{}, f.opt.Parallelization)
	var wg sync.WaitGroup
	for i := range f.Trees {
		sem <- struct{}{}
		wg.Add(1)

		go f.fitTree(i, cols, yArr, &wg, sem)
	}
	wg.Wait()
	return nil
}

func (f *RandomForest) fitTree(i int, cols [][]float64, y []float64, wg *sync.WaitGroup, sem chan struct{}) {
	defer func() {
		wg.Done()
		<-sem
	}()

	rng := rand.New(rand.NewPCG(f.seed, uint64(i)))
	m := len(y)
	idx := make([]int, m)
	for k := range idx {
		if f.opt.Bootstrap {
			idx[k] = rng.IntN(m)
			continue
		}
		idx[k] = k
	}

	tree := newTree(f.opt.Tree, rng)
	tree.fit(cols, y, idx)
	f.Trees[i] = tree
}

// Predict averages the predictions of every tree
func (f *RandomForest) Predict(x mat.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	if err := predictValidate(x, f.Trees[0].Features); err != nil {
		return nil, err
	}
	m, _ := x.Dims()
	res := make([]float64, m)
	for _, tree := range f.Trees {
		tree.predictAdd(x, 1, res)
	}
	floats.Scale(1/float64(len(f.Trees)), res)
	return res, nil
}

// Score computes the coefficient of determination of the prediction
func (f *RandomForest) Score(x, y mat.Matrix) (float64, error) {
	return score(f, x, y)
}
