package estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// matrixRows copies a matrix into a slice of row vectors, the
// representation package gp works with.
func matrixRows(X mat.Matrix) [][]float64 {
	r, c := X.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		for j := 0; j < c; j++ {
			row[j] = X.At(i, j)
		}
		rows[i] = row
	}
	return rows
}

// columnVector extracts an n×1 matrix as a slice.
func columnVector(op string, y mat.Matrix) ([]float64, error) {
	r, c := y.Dims()
	if c != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector")
	}
	out := make([]float64, r)
	for i := 0; i < r; i++ {
		out[i] = y.At(i, 0)
	}
	return out, nil
}

// validateFitInputs checks the common preconditions for Fit(X, y).
func validateFitInputs(op string, X, y mat.Matrix) (n, features int, err error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return 0, 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	ry, _ := y.Dims()
	if ry != r {
		return 0, 0, errors.NewDimensionError(op, r, ry, 0)
	}
	return r, c, nil
}
