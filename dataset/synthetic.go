// Package dataset provides synthetic data generators and splitting
// utilities for trying out and testing the estimators.
package dataset

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// MakeSine generates n noisy samples of y = sin(2πx) with x uniform on
// [0, 1]. noise is the standard deviation of the Gaussian observation
// noise. The same seed always produces the same data.
func MakeSine(n int, noise float64, seed int64) (X, y *mat.Dense, err error) {
	if n <= 0 {
		return nil, nil, errors.NewValueError("MakeSine", "n must be positive")
	}
	if noise < 0 {
		return nil, nil, errors.NewValueError("MakeSine", "noise must be non-negative")
	}

	rng := rand.New(rand.NewSource(seed))
	X = mat.NewDense(n, 1, nil)
	y = mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := rng.Float64()
		X.Set(i, 0, x)
		y.Set(i, 0, math.Sin(2*math.Pi*x)+noise*rng.NormFloat64())
	}
	return X, y, nil
}

// MakeClusters generates a binary classification problem: n samples per
// class drawn from two Gaussian blobs in `features` dimensions, centered
// at ±separation/2 along every axis. Labels are 0 and 1.
func MakeClusters(n, features int, separation float64, seed int64) (X, y *mat.Dense, err error) {
	if n <= 0 || features <= 0 {
		return nil, nil, errors.NewValueError("MakeClusters", "n and features must be positive")
	}

	rng := rand.New(rand.NewSource(seed))
	total := 2 * n
	X = mat.NewDense(total, features, nil)
	y = mat.NewDense(total, 1, nil)
	half := separation / 2
	for i := 0; i < total; i++ {
		center := -half
		label := 0.0
		if i >= n {
			center = half
			label = 1.0
		}
		for j := 0; j < features; j++ {
			X.Set(i, j, center+rng.NormFloat64())
		}
		y.Set(i, 0, label)
	}
	return X, y, nil
}
