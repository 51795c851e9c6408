package feature

import (
	"errors"
	"math"
	"slices"
	"time"

	mat_ "github.com/aouyang1/go-workforce/mat"
	"github.com/aouyang1/go-workforce/timedataset"

	"gonum.org/v1/gonum/mat"
)

var ErrEmptyFrame = errors.New("frame has no rows")

// Key identifies the observation behind a frame row
type Key struct {
	EntityID string
	Date     time.Time
}

// Frame is the derived design matrix with one row per observation ordered by entity and
// then date. Missing feature values are NaN.
type Frame struct {
	Schema *Schema
	Keys   []Key
	X      [][]float64
	Y      []float64
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Keys)
}

func (f *Frame) subset(idx []int) *Frame {
	next := &Frame{
		Schema: f.Schema,
		Keys:   make([]Key, 0, len(idx)),
		X:      make([][]float64, 0, len(idx)),
		Y:      make([]float64, 0, len(idx)),
	}
	for _, i := range idx {
		next.Keys = append(next.Keys, f.Keys[i])
		next.X = append(next.X, slices.Clone(f.X[i]))
		next.Y = append(next.Y, f.Y[i])
	}
	return next
}

// Copy returns a deep copy of the frame
func (f *Frame) Copy() *Frame {
	if f == nil {
		return nil
	}
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	return f.subset(idx)
}

// Split partitions rows chronologically. Rows dated before the cutoff are train and all
// others are test.
func (f *Frame) Split(cutoff time.Time) (*Frame, *Frame) {
	dates := make([]time.Time, f.Len())
	for i, k := range f.Keys {
		dates[i] = k.Date
	}
	trainIdx, testIdx := timedataset.SplitIndex(dates, cutoff)
	return f.subset(trainIdx), f.subset(testIdx)
}

// DropMissing removes every row with a NaN feature and returns the number of removed rows
func (f *Frame) DropMissing() (*Frame, int) {
	idx := make([]int, 0, f.Len())
	for i, row := range f.X {
		if !slices.ContainsFunc(row, math.IsNaN) {
			idx = append(idx, i)
		}
	}
	return f.subset(idx), f.Len() - len(idx)
}

// Matrix returns the rows as an m x n design matrix
func (f *Frame) Matrix() (*mat.Dense, error) {
	if f.Len() == 0 {
		return nil, ErrEmptyFrame
	}
	return mat_.NewDenseFromArray(f.X)
}

// Column returns the values of a single feature
func (f *Frame) Column(name string) ([]float64, bool) {
	j, exists := f.Schema.Index(name)
	if !exists {
		return nil, false
	}
	col := make([]float64, len(f.X))
	for i, row := range f.X {
		col[i] = row[j]
	}
	return col, true
}

// Row looks up the row of an entity on a date
func (f *Frame) Row(entityID string, date time.Time) ([]float64, bool) {
	for i, k := range f.Keys {
		if k.EntityID == entityID && k.Date.Equal(date) {
			return f.X[i], true
		}
	}
	return nil, false
}

func mergeFrames(schema *Schema, parts []*Frame) *Frame {
	var n int
	for _, p := range parts {
		n += p.Len()
	}
	merged := &Frame{
		Schema: schema,
		Keys:   make([]Key, 0, n),
		X:      make([][]float64, 0, n),
		Y:      make([]float64, 0, n),
	}
	for _, p := range parts {
		merged.Keys = append(merged.Keys, p.Keys...)
		merged.X = append(merged.X, p.X...)
		merged.Y = append(merged.Y, p.Y...)
	}
	return merged
}
