package models

import (
	"cmp"
	"errors"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNegativeDepth    = errors.New("negative max depth")
	ErrMinSamplesSplit  = errors.New("min samples to split must be at least 2")
	ErrMinSamplesLeaf   = errors.New("min samples per leaf must be at least 1")
	ErrNegativeFeatures = errors.New("negative max features")
)

const leaf = -1

// TreeOptions controls the growth of a single regression tree
type TreeOptions struct {
	// MaxDepth limits the depth of the tree. 0 grows until leaves are pure or can no longer
	// be split.
	MaxDepth int

	MinSamplesSplit int
	MinSamplesLeaf  int

	// MaxFeatures is the number of features drawn at random for every split. 0 considers
	// every feature.
	MaxFeatures int
}

func NewDefaultTreeOptions() *TreeOptions {
	return &TreeOptions{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
}

func (t *TreeOptions) Validate() (*TreeOptions, error) {
	if t == nil {
		t = NewDefaultTreeOptions()
	}
	if t.MaxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if t.MinSamplesSplit < 2 {
		return nil, ErrMinSamplesSplit
	}
	if t.MinSamplesLeaf < 1 {
		return nil, ErrMinSamplesLeaf
	}
	if t.MaxFeatures < 0 {
		return nil, ErrNegativeFeatures
	}
	return t, nil
}

// Node is a single split or leaf of a regression tree. Leaves have Feature set to -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a CART regression tree minimizing the squared error of every split. Observations
// with a feature value at or below the threshold go left.
type Tree struct {
	opt *TreeOptions
	rng *rand.Rand

	Features int    `json:"features"`
	Nodes    []Node `json:"nodes"`
}

func newTree(opt *TreeOptions, rng *rand.Rand) *Tree {
	return &Tree{
		opt: opt,
		rng: rng,
	}
}

type split struct {
	feature   int
	threshold float64
	pos       int
	gain      float64
}

// fit grows the tree over the observations in idx. Indices may repeat for bootstrap samples.
func (t *Tree) fit(cols [][]float64, y []float64, idx []int) {
	t.Features = len(cols)
	t.Nodes = t.Nodes[:0]
	t.grow(cols, y, idx, 0)
}

func meanOf(y []float64, idx []int) float64 {
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func (t *Tree) grow(cols [][]float64, y []float64, idx []int, depth int) int {
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: leaf, Value: meanOf(y, idx)})

	if len(idx) < t.opt.MinSamplesSplit || (t.opt.MaxDepth > 0 && depth >= t.opt.MaxDepth) {
		return node
	}

	best, ok := t.bestSplit(cols, y, idx)
	if !ok {
		return node
	}

	sorted := slices.Clone(idx)
	sortByFeature(sorted, cols[best.feature])
	left := t.grow(cols, y, sorted[:best.pos], depth+1)
	right := t.grow(cols, y, sorted[best.pos:], depth+1)

	t.Nodes[node].Feature = best.feature
	t.Nodes[node].Threshold = best.threshold
	t.Nodes[node].Left = left
	t.Nodes[node].Right = right
	return node
}

func sortByFeature(idx []int, col []float64) {
	slices.SortFunc(idx, func(a, b int) int {
		if c := cmp.Compare(col[a], col[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

func (t *Tree) candidateFeatures() []int {
	n := t.Features
	if t.opt.MaxFeatures == 0 || t.opt.MaxFeatures >= n || t.rng == nil {
		features := make([]int, n)
		for j := range features {
			features[j] = j
		}
		return features
	}
	return t.rng.Perm(n)[:t.opt.MaxFeatures]
}

// bestSplit scans every candidate feature for the threshold with the largest reduction in
// squared error. Reducing the error is equivalent to maximizing sumL^2/nL + sumR^2/nR.
func (t *Tree) bestSplit(cols [][]float64, y []float64, idx []int) (split, bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += y[i]
	}
	parent := total * total / float64(n)

	best := split{gain: 1e-12 * max(1, parent)}
	found := false

	sorted := slices.Clone(idx)
	for _, j := range t.candidateFeatures() {
		col := cols[j]
		sortByFeature(sorted, col)

		var sumL float64
		for pos := 1; pos < n; pos++ {
			sumL += y[sorted[pos-1]]
			if pos < t.opt.MinSamplesLeaf || n-pos < t.opt.MinSamplesLeaf {
				continue
			}
			lo, hi := col[sorted[pos-1]], col[sorted[pos]]
			if lo == hi {
				continue
			}
			sumR := total - sumL
			gain := sumL*sumL/float64(pos) + sumR*sumR/float64(n-pos) - parent
			if gain > best.gain {
				threshold := lo + (hi-lo)/2
				// keep the midpoint strictly below hi for adjacent floats
				if threshold >= hi {
					threshold = lo
				}
				best = split{feature: j, threshold: threshold, pos: pos, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func (t *Tree) predictRow(row []float64) float64 {
	node := 0
	for t.Nodes[node].Feature != leaf {
		n := t.Nodes[node]
		if row[n.Feature] <= n.Threshold {
			node = n.Left
			continue
		}
		node = n.Right
	}
	return t.Nodes[node].Value
}

// predictAdd adds scale times the tree prediction of every row into res
func (t *Tree) predictAdd(x mat.Matrix, scale float64, res []float64) {
	_, n := x.Dims()
	row := make([]float64, n)
	for i := range res {
		mat.Row(row, i, x)
		res[i] += scale * t.predictRow(row)
	}
}

// Depth returns the number of edges on the longest path from the root to a leaf
func (t *Tree) Depth() int {
	if len(t.Nodes) == 0 {
		return 0
	}
	var walk func(node int) int
	walk = func(node int) int {
		n := t.Nodes[node]
		if n.Feature == leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(0)
}
