// Package preprocessing provides input transformations that are commonly
// applied before fitting a Gaussian-process model. Standardizing the
// inputs keeps a shared lengthscale meaningful across features.
package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gpleiss/gpwrapper/core/model"
	"github.com/gpleiss/gpwrapper/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	state *model.StateManager

	// Mean holds the per-feature mean computed by Fit.
	Mean []float64
	// Scale holds the per-feature standard deviation computed by Fit.
	// Constant features get a scale of 1 so Transform leaves them alone.
	Scale []float64

	// WithMean controls whether Transform subtracts the mean.
	WithMean bool
	// WithStd controls whether Transform divides by the deviation.
	WithStd bool
}

// NewStandardScaler creates a scaler that both centers and scales.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: true,
		WithStd:  true,
	}
}

// Fit computes the per-feature mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	s.state.Reset()

	mean := make([]float64, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		var sum float64
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		mean[j] = sum / float64(r)

		var ss float64
		for i := 0; i < r; i++ {
			d := X.At(i, j) - mean[j]
			ss += d * d
		}
		scale[j] = math.Sqrt(ss / float64(r))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	s.Mean = mean
	s.Scale = scale
	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform standardizes X using the statistics computed by Fit.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	features, _ := s.state.GetDimensions()
	if c != features {
		return nil, errors.NewDimensionError("StandardScaler.Transform", features, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if s.WithMean {
				v -= s.Mean[j]
			}
			if s.WithStd {
				v /= s.Scale[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same data.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	r, c := X.Dims()
	features, _ := s.state.GetDimensions()
	if c != features {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", features, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if s.WithStd {
				v *= s.Scale[j]
			}
			if s.WithMean {
				v += s.Mean[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// IsFitted reports whether Fit has completed successfully.
func (s *StandardScaler) IsFitted() bool { return s.state.IsFitted() }
