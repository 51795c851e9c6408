// Package mat converts between row slices and gonum matrices
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyArray  = errors.New("array has no rows or columns")
	ErrColMismatch = errors.New("column size mismatch")
)

// NewDenseFromArray builds an m x n matrix from m rows of n values. The values are copied.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m, n, err := Dims(x)
	if err != nil {
		return nil, err
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// Dims validates that every row has the same non-zero length
func Dims(x [][]float64) (int, int, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return 0, 0, ErrEmptyArray
	}
	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return 0, 0, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
	}
	return len(x), n, nil
}

// Rows returns a copy of the matrix as a slice of rows
func Rows(x mat.Matrix) [][]float64 {
	m, n := x.Dims()
	rows := make([][]float64, m)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			rows[i][j] = x.At(i, j)
		}
	}
	return rows
}

// Columns returns a copy of the matrix as a slice of columns
func Columns(x mat.Matrix) [][]float64 {
	_, n := x.Dims()
	cols := make([][]float64, n)
	for j := range cols {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols
}
